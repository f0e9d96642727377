package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// InventoryLevelRepository define el puerto hacia el contador agregado por (variante, ubicación).
// El núcleo solo lo lee en el bootstrap de lotes heredados; Upsert existe para el colaborador que lo mantiene.
type InventoryLevelRepository interface {
	// ListWithStock devuelve las filas con on_hand > 0.
	ListWithStock(ctx context.Context) ([]*entity.InventoryLevel, error)
	// GetForUpdate bloquea la fila del par (SELECT FOR UPDATE). domain.ErrNotFound si no existe.
	GetForUpdate(ctx context.Context, variantID, locationID string) (*entity.InventoryLevel, error)
	Upsert(ctx context.Context, level *entity.InventoryLevel) error
}
