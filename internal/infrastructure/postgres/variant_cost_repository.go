package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.VariantCostRepository = (*VariantCostRepo)(nil)

// VariantCostRepo implementación sobre PostgreSQL (usable con pool o tx).
type VariantCostRepo struct {
	q Querier
}

// NewVariantCostRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariantCostRepository(q Querier) *VariantCostRepo {
	return &VariantCostRepo{q: q}
}

// Upsert inserta o actualiza los costos promedio y último de la variante.
func (r *VariantCostRepo) Upsert(ctx context.Context, cost *entity.VariantCost) error {
	query := `
		INSERT INTO variant_costs (variant_id, avg_cost_cents, last_cost_cents, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (variant_id)
		DO UPDATE SET avg_cost_cents = EXCLUDED.avg_cost_cents,
		              last_cost_cents = EXCLUDED.last_cost_cents,
		              updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, cost.VariantID, cost.AvgCost, cost.LastCost, cost.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert variant cost: %w", err)
	}
	return nil
}

// Get obtiene los costos de la variante (domain.ErrNotFound si no tiene).
func (r *VariantCostRepo) Get(ctx context.Context, variantID string) (*entity.VariantCost, error) {
	query := `
		SELECT variant_id, avg_cost_cents, last_cost_cents, updated_at
		FROM variant_costs WHERE variant_id = $1`
	var c entity.VariantCost
	err := r.q.QueryRow(ctx, query, variantID).Scan(&c.VariantID, &c.AvgCost, &c.LastCost, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get variant cost: %w", err)
	}
	return &c, nil
}
