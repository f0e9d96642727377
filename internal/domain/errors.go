package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	// ErrConflict envuelve fallos transaccionales (serialización, deadlock) que el llamador puede reintentar.
	ErrConflict = errors.New("conflicto con el estado actual")
)
