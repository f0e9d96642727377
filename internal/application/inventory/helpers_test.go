package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/stretchr/testify/require"
)

const (
	variantA = "var-a"
	variantB = "var-b"
	locMain  = "loc-main"
	locStore = "loc-store"
)

var day0 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	lots      *inventory.LotUseCase
	alloc     *inventory.AllocatorUseCase
	costs     *inventory.CostUseCase
	bootstrap *inventory.LegacyBootstrapUseCase
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), clock: day0}
	log := logger.Nop()
	f.lots = inventory.NewLotUseCase(f.store, nil, log, 0).WithClock(func() time.Time { return f.clock })
	f.alloc = inventory.NewAllocatorUseCase(f.store, f.lots, log)
	f.costs = inventory.NewCostUseCase(f.store, f.lots, log)
	f.bootstrap = inventory.NewLegacyBootstrapUseCase(f.store, f.lots, log)
	return f
}

// receive crea un lote recibido daysAgo días antes de day0.
func (f *fixture) receive(t *testing.T, variantID, locationID string, qty int, unitCost int64, daysAgo int) *entity.Lot {
	t.Helper()
	lot, err := f.lots.CreateLot(context.Background(), dto.CreateLotInput{
		VariantID:  variantID,
		LocationID: locationID,
		Quantity:   qty,
		UnitCost:   unitCost,
		ReceivedAt: day0.AddDate(0, 0, -daysAgo),
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) lot(t *testing.T, id string) *entity.Lot {
	t.Helper()
	lot, err := f.lots.GetLot(context.Background(), id)
	require.NoError(t, err)
	return lot
}

func (f *fixture) seedLevel(t *testing.T, level entity.InventoryLevel) {
	t.Helper()
	err := f.store.Run(context.Background(), func(repos inventory.Repos) error {
		return repos.Levels.Upsert(context.Background(), &level)
	})
	require.NoError(t, err)
}

func quantities(res dto.AllocationResult) []int {
	out := make([]int, 0, len(res.Allocations))
	for _, a := range res.Allocations {
		out = append(out, a.Quantity)
	}
	return out
}
