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

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// ListWithStock lista las filas agregadas con on_hand > 0.
func (r *InventoryLevelRepo) ListWithStock(ctx context.Context) ([]*entity.InventoryLevel, error) {
	query := `
		SELECT variant_id, location_id, on_hand, reserved, picked, updated_at
		FROM inventory_levels
		WHERE on_hand > 0
		ORDER BY variant_id, location_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels: %w", err)
	}
	defer rows.Close()
	var out []*entity.InventoryLevel
	for rows.Next() {
		var l entity.InventoryLevel
		if err := rows.Scan(&l.VariantID, &l.LocationID, &l.OnHand, &l.Reserved, &l.Picked, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// GetForUpdate obtiene la fila agregada y la bloquea (SELECT FOR UPDATE).
func (r *InventoryLevelRepo) GetForUpdate(ctx context.Context, variantID, locationID string) (*entity.InventoryLevel, error) {
	query := `
		SELECT variant_id, location_id, on_hand, reserved, picked, updated_at
		FROM inventory_levels
		WHERE variant_id = $1 AND location_id = $2
		FOR UPDATE`
	var l entity.InventoryLevel
	err := r.q.QueryRow(ctx, query, variantID, locationID).Scan(
		&l.VariantID, &l.LocationID, &l.OnHand, &l.Reserved, &l.Picked, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory level for update: %w", err)
	}
	return &l, nil
}

// Upsert inserta o actualiza los contadores agregados del par.
func (r *InventoryLevelRepo) Upsert(ctx context.Context, level *entity.InventoryLevel) error {
	query := `
		INSERT INTO inventory_levels (variant_id, location_id, on_hand, reserved, picked, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (variant_id, location_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, reserved = EXCLUDED.reserved,
		              picked = EXCLUDED.picked, updated_at = now()`
	_, err := r.q.Exec(ctx, query, level.VariantID, level.LocationID, level.OnHand, level.Reserved, level.Picked)
	if err != nil {
		return fmt.Errorf("upsert inventory level: %w", err)
	}
	return nil
}
