package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.OrderItemCostRepository = (*OrderItemCostRepo)(nil)

// OrderItemCostRepo implementación sobre PostgreSQL (usable con pool o tx).
type OrderItemCostRepo struct {
	q Querier
}

// NewOrderItemCostRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderItemCostRepository(q Querier) *OrderItemCostRepo {
	return &OrderItemCostRepo{q: q}
}

// Create persiste el costo de venta de una asignación de pick.
func (r *OrderItemCostRepo) Create(ctx context.Context, rec *entity.OrderItemCost) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO order_item_costs (id, order_id, order_item_id, lot_id, quantity, unit_cost_cents, total_cost_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.OrderID, rec.OrderItemID, rec.LotID,
		rec.Quantity, rec.UnitCost, rec.TotalCost, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order item cost: %w", err)
	}
	return nil
}

// ListByOrderItem obtiene los registros de costo de un ítem de orden en orden de creación.
func (r *OrderItemCostRepo) ListByOrderItem(ctx context.Context, orderItemID string) ([]*entity.OrderItemCost, error) {
	query := `
		SELECT id::text, order_id, order_item_id, lot_id::text, quantity, unit_cost_cents, total_cost_cents, created_at
		FROM order_item_costs
		WHERE order_item_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, orderItemID)
	if err != nil {
		return nil, fmt.Errorf("list order item costs: %w", err)
	}
	defer rows.Close()
	var out []*entity.OrderItemCost
	for rows.Next() {
		var c entity.OrderItemCost
		if err := rows.Scan(&c.ID, &c.OrderID, &c.OrderItemID, &c.LotID,
			&c.Quantity, &c.UnitCost, &c.TotalCost, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item cost: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
