package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Lots         repository.LotRepository
	Levels       repository.InventoryLevelRepository
	OrderCosts   repository.OrderItemCostRepository
	VariantCosts repository.VariantCostRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: lectura de candidatos, mutación de contadores y registros de costo
// se confirman juntos o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// LotSequencer entrega la siguiente secuencia del día para LOT-YYYYMMDD-NNN.
// Se invoca dentro de la transacción que inserta el lote.
type LotSequencer interface {
	Next(ctx context.Context, lots repository.LotRepository, day time.Time) (int, error)
}

// DBSequencer calcula la secuencia como máximo existente + 1 (el repositorio serializa el día).
type DBSequencer struct{}

// Next implementa LotSequencer.
func (DBSequencer) Next(ctx context.Context, lots repository.LotRepository, day time.Time) (int, error) {
	maxSeq, err := lots.MaxLotSequence(ctx, day)
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}
