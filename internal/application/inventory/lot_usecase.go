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

// DefaultActiveLotsLimit cota de AllActiveLots cuando no se configura otra.
const DefaultActiveLotsLimit = 500

// LotUseCase creación y consulta de lotes.
type LotUseCase struct {
	txRunner    TxRunner
	sequencer   LotSequencer
	log         *logger.Logger
	activeLimit int
	now         func() time.Time
}

// NewLotUseCase construye el caso de uso. sequencer nil usa DBSequencer; activeLimit <= 0 usa DefaultActiveLotsLimit.
func NewLotUseCase(txRunner TxRunner, sequencer LotSequencer, log *logger.Logger, activeLimit int) *LotUseCase {
	if sequencer == nil {
		sequencer = DBSequencer{}
	}
	if activeLimit <= 0 {
		activeLimit = DefaultActiveLotsLimit
	}
	return &LotUseCase{
		txRunner:    txRunner,
		sequencer:   sequencer,
		log:         log.Component("lots"),
		activeLimit: activeLimit,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LotUseCase) WithClock(now func() time.Time) *LotUseCase {
	uc.now = now
	return uc
}

// CreateLot valida y crea un lote activo en su propia transacción.
func (uc *LotUseCase) CreateLot(ctx context.Context, in dto.CreateLotInput) (*entity.Lot, error) {
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		lot, err = uc.CreateLotInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_number", lot.LotNumber).
		Str("variant_id", lot.VariantID).
		Str("location_id", lot.LocationID).
		Int("qty", lot.OnHand).
		Int64("unit_cost", lot.UnitCost).
		Msg("lote creado")
	return lot, nil
}

// CreateLotInTx crea el lote usando los repositorios de la transacción del llamador
// (traslados, ajustes positivos y bootstrap).
func (uc *LotUseCase) CreateLotInTx(ctx context.Context, repos Repos, in dto.CreateLotInput) (*entity.Lot, error) {
	lot, err := uc.newLot(ctx, repos.Lots, in)
	if err != nil {
		return nil, err
	}
	if err := repos.Lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// newLot arma el lote con número asignado, sin persistirlo.
func (uc *LotUseCase) newLot(ctx context.Context, lots repository.LotRepository, in dto.CreateLotInput) (*entity.Lot, error) {
	if in.VariantID == "" || in.LocationID == "" || in.Quantity <= 0 || in.UnitCost < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	lotNumber, err := uc.nextLotNumber(ctx, lots, now)
	if err != nil {
		return nil, err
	}
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	return &entity.Lot{
		ID:         uuid.New().String(),
		LotNumber:  lotNumber,
		VariantID:  in.VariantID,
		LocationID: in.LocationID,
		UnitCost:   in.UnitCost,
		OnHand:     in.Quantity,
		Status:     entity.LotStatusActive,
		Provenance: in.Provenance,
		ReceivedAt: receivedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (uc *LotUseCase) nextLotNumber(ctx context.Context, lots repository.LotRepository, now time.Time) (string, error) {
	seq, err := uc.sequencer.Next(ctx, lots, now)
	if err != nil {
		return "", fmt.Errorf("siguiente número de lote: %w", err)
	}
	return inventory.FormatLotNumber(now, seq), nil
}

// GetLot obtiene un lote por ID (domain.ErrNotFound si no existe).
func (uc *LotUseCase) GetLot(ctx context.Context, id string) (*entity.Lot, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		lot, err = repos.Lots.GetByID(ctx, id)
		return err
	})
	return lot, err
}

// ActiveLotsAt lotes activos de la variante en la ubicación, en orden FIFO.
func (uc *LotUseCase) ActiveLotsAt(ctx context.Context, variantID, locationID string) ([]*entity.Lot, error) {
	if variantID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var lots []*entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		lots, err = repos.Lots.ListActiveAt(ctx, variantID, locationID)
		return err
	})
	return lots, err
}

// ActiveLotsFor lotes activos de la variante en todas las ubicaciones, en orden FIFO.
func (uc *LotUseCase) ActiveLotsFor(ctx context.Context, variantID string) ([]*entity.Lot, error) {
	if variantID == "" {
		return nil, domain.ErrInvalidInput
	}
	var lots []*entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		lots, err = repos.Lots.ListActiveForVariant(ctx, variantID)
		return err
	})
	return lots, err
}

// AllActiveLots lotes activos de todo el inventario, en orden FIFO, acotados por limit.
func (uc *LotUseCase) AllActiveLots(ctx context.Context, limit int) ([]*entity.Lot, error) {
	if limit <= 0 {
		limit = uc.activeLimit
	}
	var lots []*entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		lots, err = repos.Lots.ListActive(ctx, limit)
		return err
	})
	return lots, err
}
