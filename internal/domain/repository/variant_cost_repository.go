package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// VariantCostRepository define el puerto para los costos denormalizados por variante.
type VariantCostRepository interface {
	Upsert(ctx context.Context, cost *entity.VariantCost) error
	// Get devuelve domain.ErrNotFound si la variante no tiene costos registrados.
	Get(ctx context.Context, variantID string) (*entity.VariantCost, error)
}
