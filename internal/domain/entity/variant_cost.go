package entity

import "time"

// VariantCost costos denormalizados de una variante para visualización rápida.
// Los lotes activos siguen siendo la fuente de verdad.
type VariantCost struct {
	VariantID string
	AvgCost   int64 // promedio ponderado sobre lotes activos (centavos)
	LastCost  int64 // costo de la última recepción (centavos)
	UpdatedAt time.Time
}

// VariantValuation agregado de lotes activos de una variante (resultado crudo del repositorio).
type VariantValuation struct {
	VariantID string
	Quantity  int64
	Value     int64 // Σ(OnHand * UnitCost), centavos
}
