package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserve_FIFO(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 10, 200, 2)
	newer := f.receive(t, variantA, locMain, 5, 300, 1)

	res, err := f.alloc.Reserve(ctx, variantA, locMain, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Applied)
	assert.False(t, res.Partial())
	assert.Equal(t, []int{10, 2}, quantities(res))
	assert.Equal(t, older.ID, res.Allocations[0].LotID)

	assert.Equal(t, 10, f.lot(t, older.ID).Reserved)
	assert.Equal(t, 2, f.lot(t, newer.ID).Reserved)
	assert.Equal(t, 10, f.lot(t, older.ID).OnHand, "reservar no toca on_hand")
}

func TestReserve_OrdenPorRecepcionNoPorCreacion(t *testing.T) {
	f := newFixture(t)
	// creado primero pero recibido después
	late := f.receive(t, variantA, locMain, 5, 100, 0)
	early := f.receive(t, variantA, locMain, 5, 100, 3)

	res, err := f.alloc.Reserve(context.Background(), variantA, locMain, 3)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	assert.Equal(t, early.ID, res.Allocations[0].LotID)
	assert.Equal(t, 0, f.lot(t, late.ID).Reserved)
}

func TestReserve_SinLotesDevuelveVacio(t *testing.T) {
	f := newFixture(t)
	res, err := f.alloc.Reserve(context.Background(), variantA, locMain, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Applied)
	assert.True(t, res.Partial())
	assert.Empty(t, res.Allocations)
}

func TestReserve_IgnoraOtrasUbicaciones(t *testing.T) {
	f := newFixture(t)
	f.receive(t, variantA, locStore, 10, 200, 1)
	f.receive(t, variantB, locMain, 10, 200, 1)

	res, err := f.alloc.Reserve(context.Background(), variantA, locMain, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Applied)
}

func TestRelease_MasRecientePrimero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 10, 200, 2)
	newer := f.receive(t, variantA, locMain, 5, 300, 1)
	_, err := f.alloc.Reserve(ctx, variantA, locMain, 12)
	require.NoError(t, err)

	res, err := f.alloc.Release(ctx, variantA, locMain, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Applied)
	assert.Equal(t, newer.ID, res.Allocations[0].LotID)
	assert.Equal(t, []int{2, 1}, quantities(res))

	assert.Equal(t, 9, f.lot(t, older.ID).Reserved)
	assert.Equal(t, 0, f.lot(t, newer.ID).Reserved)
}

func TestPick_ConsumeReservaYRegistraCostos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 10, 200, 2)
	newer := f.receive(t, variantA, locMain, 5, 300, 1)
	_, err := f.alloc.Reserve(ctx, variantA, locMain, 9)
	require.NoError(t, err)

	ref := &dto.OrderItemRef{OrderID: "ord-1", OrderItemID: "item-1"}
	res, err := f.alloc.Pick(ctx, variantA, locMain, 12, ref)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Applied)
	assert.Equal(t, []int{10, 2}, quantities(res))
	assert.Equal(t, int64(10*200+2*300), res.TotalCost())

	o := f.lot(t, older.ID)
	assert.Equal(t, 0, o.OnHand)
	assert.Equal(t, 0, o.Reserved)
	assert.Equal(t, 10, o.Picked)
	assert.True(t, o.IsActive(), "unidades pickeadas mantienen el lote activo")

	n := f.lot(t, newer.ID)
	assert.Equal(t, 3, n.OnHand)
	assert.Equal(t, 2, n.Picked)

	recs, err := f.costs.OrderItemCosts(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, older.ID, recs[0].LotID)
	assert.Equal(t, int64(2000), recs[0].TotalCost)
	assert.Equal(t, "ord-1", recs[0].OrderID)
	assert.Equal(t, newer.ID, recs[1].LotID)
	assert.Equal(t, int64(600), recs[1].TotalCost)
}

func TestPick_SinReferenciaNoRegistraCostos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, variantA, locMain, 10, 200, 1)

	_, err := f.alloc.Pick(ctx, variantA, locMain, 4, nil)
	require.NoError(t, err)

	err = f.store.Run(ctx, func(repos inventory.Repos) error {
		recs, err := repos.OrderCosts.ListByOrderItem(ctx, "")
		assert.Empty(t, recs)
		return err
	})
	require.NoError(t, err)
}

func TestPick_Parcial(t *testing.T) {
	f := newFixture(t)
	f.receive(t, variantA, locMain, 7, 100, 2)
	f.receive(t, variantA, locMain, 5, 100, 1)

	res, err := f.alloc.Pick(context.Background(), variantA, locMain, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Requested)
	assert.Equal(t, 12, res.Applied)
	assert.True(t, res.Partial())
}

func TestPick_ReferenciaSinItemEsInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.alloc.Pick(context.Background(), variantA, locMain, 1, &dto.OrderItemRef{OrderID: "ord-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestShip_DesdePickeado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 10, 200, 2)
	newer := f.receive(t, variantA, locMain, 5, 300, 1)
	_, err := f.alloc.Pick(ctx, variantA, locMain, 12, nil)
	require.NoError(t, err)

	res, err := f.alloc.Ship(ctx, variantA, locMain, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Applied)
	// lo pickeado se despacha del lote más reciente primero
	assert.Equal(t, newer.ID, res.Allocations[0].LotID)
	assert.Equal(t, []int{2, 2}, quantities(res))
	assert.Equal(t, 0, f.lot(t, newer.ID).Picked)
	assert.Equal(t, 8, f.lot(t, older.ID).Picked)
}

func TestShip_FallbackDesdeEstante(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 10, 200, 2)
	newer := f.receive(t, variantA, locMain, 5, 300, 1)
	_, err := f.alloc.Reserve(ctx, variantA, locMain, 6)
	require.NoError(t, err)
	_, err = f.alloc.Pick(ctx, variantA, locMain, 2, nil)
	require.NoError(t, err)

	// older: on_hand 8, reserved 4, picked 2
	res, err := f.alloc.Ship(ctx, variantA, locMain, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Applied)
	assert.Equal(t, []int{2, 8, 2}, quantities(res))

	o := f.lot(t, older.ID)
	assert.Equal(t, entity.LotStatusDepleted, o.Status)
	assert.True(t, o.IsEmpty())

	n := f.lot(t, newer.ID)
	assert.Equal(t, 3, n.OnHand)
	assert.Equal(t, 0, n.Reserved)
}

func TestShip_LoteAgotadoSaleDeSeleccion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receive(t, variantA, locMain, 3, 100, 1)

	_, err := f.alloc.Ship(ctx, variantA, locMain, 3)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusDepleted, f.lot(t, lot.ID).Status)

	active, err := f.lots.ActiveLotsAt(ctx, variantA, locMain)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAdjust_PositivoCreaLoteACostoCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.receive(t, variantA, locMain, 5, 400, 1)

	res, err := f.alloc.Adjust(ctx, variantA, locMain, 3)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	assert.NotEqual(t, existing.ID, res.Allocations[0].LotID)
	assert.Equal(t, int64(0), res.Allocations[0].UnitCost)

	adj := f.lot(t, res.Allocations[0].LotID)
	assert.Equal(t, 3, adj.OnHand)
	assert.Equal(t, "ajuste de inventario", adj.Notes)
	assert.Equal(t, 5, f.lot(t, existing.ID).OnHand, "nunca infla un lote existente")
}

func TestAdjust_NegativoRespetaReservas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 4, 100, 2)
	newer := f.receive(t, variantA, locMain, 6, 100, 1)
	_, err := f.alloc.Reserve(ctx, variantA, locMain, 3)
	require.NoError(t, err)

	res, err := f.alloc.Adjust(ctx, variantA, locMain, -5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, quantities(res))
	assert.Equal(t, 3, f.lot(t, older.ID).OnHand)
	assert.Equal(t, 3, f.lot(t, older.ID).Reserved)
	assert.Equal(t, 2, f.lot(t, newer.ID).OnHand)
}

func TestAdjust_CeroEsInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.alloc.Adjust(context.Background(), variantA, locMain, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 10, 200, 2)
	newer := f.receive(t, variantA, locMain, 5, 300, 1)

	res, err := f.alloc.Transfer(ctx, variantA, locMain, locStore, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Applied)
	require.NotNil(t, res.DestinationLot)
	assert.Equal(t, int64(233), res.DestinationLot.UnitCost)
	assert.Equal(t, 15, res.DestinationLot.OnHand)
	assert.Equal(t, locStore, res.DestinationLot.LocationID)
	assert.Equal(t, "traslado desde loc-main", res.DestinationLot.Notes)

	assert.Equal(t, entity.LotStatusDepleted, f.lot(t, older.ID).Status)
	assert.Equal(t, entity.LotStatusDepleted, f.lot(t, newer.ID).Status)

	dest, err := f.lots.ActiveLotsAt(ctx, variantA, locStore)
	require.NoError(t, err)
	require.Len(t, dest, 1)
	assert.Equal(t, res.DestinationLot.ID, dest[0].ID)
}

func TestTransfer_SinStockNoCreaLote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, variantA, locMain, 4, 100, 1)
	_, err := f.alloc.Reserve(ctx, variantA, locMain, 4)
	require.NoError(t, err)

	res, err := f.alloc.Transfer(ctx, variantA, locMain, locStore, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Applied)
	assert.Nil(t, res.DestinationLot)

	dest, err := f.lots.ActiveLotsAt(ctx, variantA, locStore)
	require.NoError(t, err)
	assert.Empty(t, dest)
}

func TestTransfer_MismaUbicacionEsInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.alloc.Transfer(context.Background(), variantA, locMain, locMain, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOperaciones_ValidanEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.alloc.Reserve(ctx, variantA, locMain, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.alloc.Release(ctx, "", locMain, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.alloc.Ship(ctx, variantA, "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.alloc.Pick(ctx, variantA, locMain, -1, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_ParcialCosteaSoloLoConsumido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.receive(t, variantA, locMain, 4, 100, 3)
	f.receive(t, variantA, locMain, 6, 400, 2)
	// la reserva del lote antiguo lo deja fuera del traslado salvo 1 unidad
	_, err := f.alloc.Reserve(ctx, variantA, locMain, 3)
	require.NoError(t, err)

	res, err := f.alloc.Transfer(ctx, variantA, locMain, locStore, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, quantities(res.AllocationResult))
	require.NotNil(t, res.DestinationLot)
	// (1*100 + 2*400) / 3 = 300
	assert.Equal(t, int64(300), res.DestinationLot.UnitCost)
	assert.Equal(t, 3, res.DestinationLot.OnHand)
	assert.Equal(t, 3, f.lot(t, older.ID).Reserved)
}
