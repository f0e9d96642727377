package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// OrderItemCostRepository define el puerto para el registro de costo de ventas por lote.
type OrderItemCostRepository interface {
	Create(ctx context.Context, rec *entity.OrderItemCost) error
	ListByOrderItem(ctx context.Context, orderItemID string) ([]*entity.OrderItemCost, error)
}
