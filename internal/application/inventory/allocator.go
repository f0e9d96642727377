package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// AllocatorUseCase distribuidor FIFO mecánico sobre los lotes de una (variante, ubicación).
// Cada operación corre en una transacción con bloqueo de filas (SELECT FOR UPDATE) y Commit/Rollback.
//
// Nunca falla por falta de stock: aplica lo que puede y devuelve el desglose. El llamador valida
// disponibilidad contra el contador agregado antes de invocar y trata un resultado parcial como error propio.
type AllocatorUseCase struct {
	txRunner TxRunner
	lots     *LotUseCase
	log      *logger.Logger
	now      func() time.Time
}

// NewAllocatorUseCase construye el caso de uso. lots crea los lotes de destino de traslados y ajustes.
func NewAllocatorUseCase(txRunner TxRunner, lots *LotUseCase, log *logger.Logger) *AllocatorUseCase {
	return &AllocatorUseCase{
		txRunner: txRunner,
		lots:     lots,
		log:      log.Component("allocator"),
		now:      time.Now,
	}
}

// Reserve aparta qty unidades, lote más antiguo primero. No toca OnHand.
func (uc *AllocatorUseCase) Reserve(ctx context.Context, variantID, locationID string, qty int) (dto.AllocationResult, error) {
	if err := validateRequest(variantID, locationID, qty); err != nil {
		return dto.AllocationResult{}, err
	}
	var res dto.AllocationResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		candidates, err := repos.Lots.ListActiveAtForUpdate(ctx, variantID, locationID)
		if err != nil {
			return err
		}
		res, err = apply(ctx, repos.Lots, candidates, qty, (*entity.Lot).Reserve)
		return err
	})
	if err != nil {
		return dto.AllocationResult{}, err
	}
	uc.logResult("reserve", variantID, locationID, res)
	return res, nil
}

// Release deshace reservas, lote recibido más recientemente primero.
func (uc *AllocatorUseCase) Release(ctx context.Context, variantID, locationID string, qty int) (dto.AllocationResult, error) {
	if err := validateRequest(variantID, locationID, qty); err != nil {
		return dto.AllocationResult{}, err
	}
	var res dto.AllocationResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		candidates, err := repos.Lots.ListActiveAtForUpdate(ctx, variantID, locationID)
		if err != nil {
			return err
		}
		res, err = apply(ctx, repos.Lots, newestFirst(candidates), qty, (*entity.Lot).Release)
		return err
	})
	if err != nil {
		return dto.AllocationResult{}, err
	}
	uc.logResult("release", variantID, locationID, res)
	return res, nil
}

// Pick saca del estante qty unidades, lote más antiguo primero, consumiendo la reserva de cada lote antes
// que su stock libre. Con ref != nil registra un costo de ítem de orden por cada lote tocado.
func (uc *AllocatorUseCase) Pick(ctx context.Context, variantID, locationID string, qty int, ref *dto.OrderItemRef) (dto.AllocationResult, error) {
	if err := validateRequest(variantID, locationID, qty); err != nil {
		return dto.AllocationResult{}, err
	}
	if ref != nil && ref.OrderItemID == "" {
		return dto.AllocationResult{}, domain.ErrInvalidInput
	}
	var res dto.AllocationResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		candidates, err := repos.Lots.ListActiveAtForUpdate(ctx, variantID, locationID)
		if err != nil {
			return err
		}
		res, err = apply(ctx, repos.Lots, candidates, qty, (*entity.Lot).Pick)
		if err != nil || ref == nil {
			return err
		}
		now := uc.now()
		for _, a := range res.Allocations {
			rec := &entity.OrderItemCost{
				ID:          uuid.New().String(),
				OrderID:     ref.OrderID,
				OrderItemID: ref.OrderItemID,
				LotID:       a.LotID,
				Quantity:    a.Quantity,
				UnitCost:    a.UnitCost,
				TotalCost:   a.TotalCost(),
				CreatedAt:   now,
			}
			if err := repos.OrderCosts.Create(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dto.AllocationResult{}, err
	}
	uc.logResult("pick", variantID, locationID, res)
	return res, nil
}

// Ship despacha qty unidades: primero de lo pickeado (lote más reciente primero) y, si no alcanza,
// directo desde estante (lote más antiguo primero) liberando la reserva equivalente.
func (uc *AllocatorUseCase) Ship(ctx context.Context, variantID, locationID string, qty int) (dto.AllocationResult, error) {
	if err := validateRequest(variantID, locationID, qty); err != nil {
		return dto.AllocationResult{}, err
	}
	var res dto.AllocationResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		candidates, err := repos.Lots.ListActiveAtForUpdate(ctx, variantID, locationID)
		if err != nil {
			return err
		}
		res, err = apply(ctx, repos.Lots, newestFirst(candidates), qty, (*entity.Lot).ShipPicked)
		if err != nil || res.Applied == qty {
			return err
		}
		fallback, err := apply(ctx, repos.Lots, candidates, qty-res.Applied, (*entity.Lot).ShipOnHand)
		if err != nil {
			return err
		}
		res.Applied += fallback.Applied
		res.Allocations = append(res.Allocations, fallback.Allocations...)
		return nil
	})
	if err != nil {
		return dto.AllocationResult{}, err
	}
	uc.logResult("ship", variantID, locationID, res)
	return res, nil
}

// Adjust aplica un ajuste manual. delta > 0 crea un lote nuevo a costo cero (nunca infla uno existente);
// delta < 0 descuenta stock disponible, lote más antiguo primero.
func (uc *AllocatorUseCase) Adjust(ctx context.Context, variantID, locationID string, delta int) (dto.AllocationResult, error) {
	if delta == 0 {
		return dto.AllocationResult{}, domain.ErrInvalidInput
	}
	qty := delta
	if qty < 0 {
		qty = -qty
	}
	if err := validateRequest(variantID, locationID, qty); err != nil {
		return dto.AllocationResult{}, err
	}
	var res dto.AllocationResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		if delta > 0 {
			lot, err := uc.lots.CreateLotInTx(ctx, repos, dto.CreateLotInput{
				VariantID:  variantID,
				LocationID: locationID,
				Quantity:   delta,
				UnitCost:   0,
				Provenance: entity.Provenance{Notes: "ajuste de inventario"},
			})
			if err != nil {
				return err
			}
			res = dto.AllocationResult{
				Requested:   qty,
				Applied:     qty,
				Allocations: []entity.LotAllocation{allocationOf(lot, qty)},
			}
			return nil
		}
		candidates, err := repos.Lots.ListActiveAtForUpdate(ctx, variantID, locationID)
		if err != nil {
			return err
		}
		res, err = apply(ctx, repos.Lots, candidates, qty, (*entity.Lot).Deduct)
		return err
	})
	if err != nil {
		return dto.AllocationResult{}, err
	}
	uc.logResult("adjust", variantID, locationID, res)
	return res, nil
}

// Transfer mueve stock disponible de fromLocationID a toLocationID, lote más antiguo primero, y crea
// exactamente un lote en destino al costo promedio ponderado de lo consumido.
func (uc *AllocatorUseCase) Transfer(ctx context.Context, variantID, fromLocationID, toLocationID string, qty int) (dto.TransferResult, error) {
	if err := validateRequest(variantID, fromLocationID, qty); err != nil {
		return dto.TransferResult{}, err
	}
	if toLocationID == "" || toLocationID == fromLocationID {
		return dto.TransferResult{}, domain.ErrInvalidInput
	}
	var res dto.TransferResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		candidates, err := repos.Lots.ListActiveAtForUpdate(ctx, variantID, fromLocationID)
		if err != nil {
			return err
		}
		res.AllocationResult, err = apply(ctx, repos.Lots, candidates, qty, (*entity.Lot).Deduct)
		if err != nil {
			return err
		}
		if res.Applied == 0 {
			return nil
		}
		layers := make([]inventory.CostLayer, 0, len(res.Allocations))
		for _, a := range res.Allocations {
			layers = append(layers, inventory.CostLayer{Quantity: int64(a.Quantity), UnitCost: a.UnitCost})
		}
		avgCost, ok := inventory.WeightedAverageCents(layers)
		if !ok {
			return fmt.Errorf("traslado de %d unidades sin capas de costo: %w", res.Applied, domain.ErrConflict)
		}
		res.DestinationLot, err = uc.lots.CreateLotInTx(ctx, repos, dto.CreateLotInput{
			VariantID:  variantID,
			LocationID: toLocationID,
			Quantity:   res.Applied,
			UnitCost:   avgCost,
			Provenance: entity.Provenance{Notes: fmt.Sprintf("traslado desde %s", fromLocationID)},
		})
		return err
	})
	if err != nil {
		return dto.TransferResult{}, err
	}
	uc.logResult("transfer", variantID, fromLocationID, res.AllocationResult)
	return res, nil
}

// apply recorre los lotes en el orden dado, toma de cada uno lo que step permite sin romper invariantes,
// persiste los contadores del lote tocado y se detiene al agotar qty o los lotes.
func apply(
	ctx context.Context,
	lots repository.LotRepository,
	candidates []*entity.Lot,
	qty int,
	step func(lot *entity.Lot, n int) int,
) (dto.AllocationResult, error) {
	res := dto.AllocationResult{Requested: qty}
	remaining := qty
	for _, lot := range candidates {
		if remaining == 0 {
			break
		}
		take := step(lot, remaining)
		if take == 0 {
			continue
		}
		if err := lots.UpdateCounters(ctx, lot); err != nil {
			return res, err
		}
		res.Allocations = append(res.Allocations, allocationOf(lot, take))
		res.Applied += take
		remaining -= take
	}
	return res, nil
}

func allocationOf(lot *entity.Lot, qty int) entity.LotAllocation {
	return entity.LotAllocation{
		LotID:     lot.ID,
		LotNumber: lot.LotNumber,
		Quantity:  qty,
		UnitCost:  lot.UnitCost,
	}
}

// newestFirst copia los lotes en orden inverso al FIFO.
func newestFirst(lots []*entity.Lot) []*entity.Lot {
	out := make([]*entity.Lot, len(lots))
	for i, l := range lots {
		out[len(lots)-1-i] = l
	}
	return out
}

func validateRequest(variantID, locationID string, qty int) error {
	if variantID == "" || locationID == "" || qty <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

func (uc *AllocatorUseCase) logResult(op, variantID, locationID string, res dto.AllocationResult) {
	ev := uc.log.Debug()
	if res.Partial() {
		ev = uc.log.Warn()
	}
	ev.Str("op", op).
		Str("variant_id", variantID).
		Str("location_id", locationID).
		Int("requested", res.Requested).
		Int("applied", res.Applied).
		Int("lots", len(res.Allocations)).
		Msg("asignación FIFO")
}
