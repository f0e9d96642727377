package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// LegacyLotNotes nota de procedencia de los lotes creados por el bootstrap.
const LegacyLotNotes = "lote heredado: inventario previo al control por lotes"

// LegacyBootstrapUseCase migra el inventario agregado previo a lotes: un lote a costo cero por cada
// (variante, ubicación) con stock que nunca tuvo lotes. Un par con lotes, aunque estén agotados, no se
// vuelve a migrar.
type LegacyBootstrapUseCase struct {
	txRunner TxRunner
	lots     *LotUseCase
	log      *logger.Logger
}

// NewLegacyBootstrapUseCase construye el caso de uso.
func NewLegacyBootstrapUseCase(txRunner TxRunner, lots *LotUseCase, log *logger.Logger) *LegacyBootstrapUseCase {
	return &LegacyBootstrapUseCase{
		txRunner: txRunner,
		lots:     lots,
		log:      log.Component("legacy_bootstrap"),
	}
}

// CreateLegacyLots recorre las filas agregadas con on_hand > 0. Cada par se procesa en su propia
// transacción: bloquea la fila agregada, verifica que el par no tenga lotes y crea el lote copiando
// el reparto reserved/picked (acotado a on_hand).
func (uc *LegacyBootstrapUseCase) CreateLegacyLots(ctx context.Context) (dto.BootstrapResult, error) {
	var levels []*entity.InventoryLevel
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		levels, err = repos.Levels.ListWithStock(ctx)
		return err
	})
	if err != nil {
		return dto.BootstrapResult{}, fmt.Errorf("listar inventario agregado: %w", err)
	}

	var result dto.BootstrapResult
	for _, level := range levels {
		lot, err := uc.bootstrapPair(ctx, level.VariantID, level.LocationID)
		if err != nil {
			return result, fmt.Errorf("bootstrap %s@%s: %w", level.VariantID, level.LocationID, err)
		}
		if lot == nil {
			result.Skipped++
			continue
		}
		result.Created++
		uc.log.Info().
			Str("lot_number", lot.LotNumber).
			Str("variant_id", lot.VariantID).
			Str("location_id", lot.LocationID).
			Int("on_hand", lot.OnHand).
			Int("reserved", lot.Reserved).
			Int("picked", lot.Picked).
			Msg("lote heredado creado")
	}
	uc.log.Info().Int("created", result.Created).Int("skipped", result.Skipped).Msg("bootstrap de lotes heredados")
	return result, nil
}

// bootstrapPair devuelve el lote creado, o nil si el par ya tenía lotes o se quedó sin stock.
func (uc *LegacyBootstrapUseCase) bootstrapPair(ctx context.Context, variantID, locationID string) (*entity.Lot, error) {
	var created *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		created = nil
		level, err := repos.Levels.GetForUpdate(ctx, variantID, locationID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if level.OnHand <= 0 {
			return nil
		}
		n, err := repos.Lots.CountAt(ctx, variantID, locationID)
		if err != nil || n > 0 {
			return err
		}
		lot, err := uc.lots.newLot(ctx, repos.Lots, dto.CreateLotInput{
			VariantID:  variantID,
			LocationID: locationID,
			Quantity:   level.OnHand,
			UnitCost:   0,
			Provenance: entity.Provenance{Notes: LegacyLotNotes},
		})
		if err != nil {
			return err
		}
		lot.Reserved = clamp(level.Reserved, level.OnHand)
		lot.Picked = clamp(level.Picked, level.OnHand)
		if err := repos.Lots.Create(ctx, lot); err != nil {
			return err
		}
		created = lot
		return nil
	})
	return created, err
}

// clamp acota v al rango [0, limit].
func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
