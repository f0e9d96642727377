package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// CostUseCase costo promedio ponderado por variante y valorización del inventario activo.
// Todo se recalcula desde los lotes activos; nunca se mantiene un promedio incremental.
type CostUseCase struct {
	txRunner TxRunner
	lots     *LotUseCase
	log      *logger.Logger
	now      func() time.Time
}

// NewCostUseCase construye el caso de uso.
func NewCostUseCase(txRunner TxRunner, lots *LotUseCase, log *logger.Logger) *CostUseCase {
	return &CostUseCase{
		txRunner: txRunner,
		lots:     lots,
		log:      log.Component("costs"),
		now:      time.Now,
	}
}

// UpdateVariantCosts recalcula AvgCost = round(Σ(OnHand*UnitCost) / ΣOnHand) sobre los lotes activos de la
// variante (receiptCost si no hay stock activo) y fija LastCost = receiptCost.
func (uc *CostUseCase) UpdateVariantCosts(ctx context.Context, variantID string, receiptCost int64) (*entity.VariantCost, error) {
	if variantID == "" || receiptCost < 0 {
		return nil, domain.ErrInvalidInput
	}
	var cost *entity.VariantCost
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		totals, err := repos.Lots.ActiveTotalsForVariant(ctx, variantID)
		if err != nil {
			return err
		}
		avg := receiptCost
		if totals.Quantity > 0 {
			avg = inventory.RoundCents(totals.Value, totals.Quantity)
		}
		cost = &entity.VariantCost{
			VariantID: variantID,
			AvgCost:   avg,
			LastCost:  receiptCost,
			UpdatedAt: uc.now(),
		}
		return repos.VariantCosts.Upsert(ctx, cost)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("variant_id", variantID).
		Int64("avg_cost", cost.AvgCost).
		Int64("last_cost", cost.LastCost).
		Msg("costos de variante actualizados")
	return cost, nil
}

// ReceiveLot registra una recepción: crea el lote y luego recalcula los costos de la variante.
func (uc *CostUseCase) ReceiveLot(ctx context.Context, in dto.CreateLotInput) (*entity.Lot, *entity.VariantCost, error) {
	lot, err := uc.lots.CreateLot(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	cost, err := uc.UpdateVariantCosts(ctx, lot.VariantID, lot.UnitCost)
	if err != nil {
		return lot, nil, err
	}
	return lot, cost, nil
}

// Valuation agrupa los lotes activos por variante (omitiendo variantes sin stock) y suma el total general.
func (uc *CostUseCase) Valuation(ctx context.Context) (dto.ValuationReport, error) {
	var rows []entity.VariantValuation
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		rows, err = repos.Lots.ValuationByVariant(ctx)
		return err
	})
	if err != nil {
		return dto.ValuationReport{}, err
	}
	report := dto.ValuationReport{Variants: make([]dto.VariantValuationDTO, 0, len(rows))}
	for _, r := range rows {
		if r.Quantity <= 0 {
			continue
		}
		report.Variants = append(report.Variants, dto.VariantValuationDTO{
			VariantID: r.VariantID,
			Quantity:  r.Quantity,
			AvgCost:   inventory.RoundCents(r.Value, r.Quantity),
			Value:     r.Value,
		})
		report.TotalQuantity += r.Quantity
		report.TotalValue += r.Value
	}
	return report, nil
}

// OrderItemCosts registros de costo de ventas de un ítem de orden.
func (uc *CostUseCase) OrderItemCosts(ctx context.Context, orderItemID string) ([]*entity.OrderItemCost, error) {
	if orderItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	var recs []*entity.OrderItemCost
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		recs, err = repos.OrderCosts.ListByOrderItem(ctx, orderItemID)
		return err
	})
	return recs, err
}

// VariantCosts lee los costos denormalizados de la variante para visualización.
// domain.ErrNotFound si nunca se registró una recepción.
func (uc *CostUseCase) VariantCosts(ctx context.Context, variantID string) (*entity.VariantCost, error) {
	if variantID == "" {
		return nil, domain.ErrInvalidInput
	}
	var cost *entity.VariantCost
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		cost, err = repos.VariantCosts.Get(ctx, variantID)
		return err
	})
	return cost, err
}
