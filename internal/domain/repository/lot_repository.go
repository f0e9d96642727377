package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes.
// Las listas de lotes activos se devuelven en orden FIFO (received_at ascendente, luego lot_number).
// Dentro de una transacción, los métodos ForUpdate bloquean las filas hasta el Commit/Rollback.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	// GetByID devuelve domain.ErrNotFound si el lote no existe.
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	ListActiveAt(ctx context.Context, variantID, locationID string) ([]*entity.Lot, error)
	ListActiveForVariant(ctx context.Context, variantID string) ([]*entity.Lot, error)
	ListActive(ctx context.Context, limit int) ([]*entity.Lot, error)
	// ListActiveAtForUpdate igual que ListActiveAt pero bloqueando las filas (SELECT FOR UPDATE).
	ListActiveAtForUpdate(ctx context.Context, variantID, locationID string) ([]*entity.Lot, error)
	// UpdateCounters persiste on_hand, reserved, picked y status. El costo unitario nunca se actualiza.
	UpdateCounters(ctx context.Context, lot *entity.Lot) error
	// CountAt cuenta los lotes del par en cualquier estado (activos y agotados).
	CountAt(ctx context.Context, variantID, locationID string) (int, error)
	// MaxLotSequence devuelve la mayor secuencia usada en el día (0 si no hay lotes) y serializa
	// la generación de números de ese día hasta el fin de la transacción.
	MaxLotSequence(ctx context.Context, day time.Time) (int, error)
	// ActiveTotalsForVariant agrega cantidad y valor de los lotes activos de una variante.
	ActiveTotalsForVariant(ctx context.Context, variantID string) (entity.VariantValuation, error)
	// ValuationByVariant agrega por variante los lotes activos con on_hand > 0, ordenado por variante.
	ValuationByVariant(ctx context.Context) ([]entity.VariantValuation, error)
}
