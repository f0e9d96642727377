package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var (
	_ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)
	_ repository.OrderItemCostRepository  = (*OrderItemCostRepo)(nil)
	_ repository.VariantCostRepository    = (*VariantCostRepo)(nil)
)

// InventoryLevelRepo contador agregado en memoria.
type InventoryLevelRepo struct {
	st *state
}

func (r *InventoryLevelRepo) ListWithStock(_ context.Context) ([]*entity.InventoryLevel, error) {
	var out []*entity.InventoryLevel
	for _, l := range r.st.levels {
		l := l
		if l.OnHand > 0 {
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VariantID != out[j].VariantID {
			return out[i].VariantID < out[j].VariantID
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out, nil
}

func (r *InventoryLevelRepo) GetForUpdate(_ context.Context, variantID, locationID string) (*entity.InventoryLevel, error) {
	l, ok := r.st.levels[levelKey{variantID, locationID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *InventoryLevelRepo) Upsert(_ context.Context, level *entity.InventoryLevel) error {
	l := *level
	l.UpdatedAt = time.Now()
	r.st.levels[levelKey{level.VariantID, level.LocationID}] = l
	return nil
}

// OrderItemCostRepo registros de costo de ventas en memoria.
type OrderItemCostRepo struct {
	st *state
}

func (r *OrderItemCostRepo) Create(_ context.Context, rec *entity.OrderItemCost) error {
	r.st.orderCosts = append(r.st.orderCosts, *rec)
	return nil
}

func (r *OrderItemCostRepo) ListByOrderItem(_ context.Context, orderItemID string) ([]*entity.OrderItemCost, error) {
	var out []*entity.OrderItemCost
	for _, rec := range r.st.orderCosts {
		rec := rec
		if rec.OrderItemID == orderItemID {
			out = append(out, &rec)
		}
	}
	return out, nil
}

// VariantCostRepo costos por variante en memoria.
type VariantCostRepo struct {
	st *state
}

func (r *VariantCostRepo) Upsert(_ context.Context, cost *entity.VariantCost) error {
	r.st.variantCosts[cost.VariantID] = *cost
	return nil
}

func (r *VariantCostRepo) Get(_ context.Context, variantID string) (*entity.VariantCost, error) {
	c, ok := r.st.variantCosts[variantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}
