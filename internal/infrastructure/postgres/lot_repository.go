package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `
	id::text, lot_number, variant_id, location_id, unit_cost_cents,
	on_hand, reserved, picked, status,
	receiving_ref, purchase_order_ref, inbound_shipment_ref, notes,
	received_at, created_at, updated_at`

// Orden FIFO con desempate determinístico. El último criterio ordena por (día, secuencia): el prefijo
// LOT-YYYYMMDD- ocupa 13 caracteres y una secuencia más larga siempre es mayor.
const fifoOrder = `ORDER BY received_at, created_at, left(lot_number, 13), length(lot_number), lot_number`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create inserta un lote nuevo. Un lot_number repetido devuelve domain.ErrDuplicate.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO inventory_lots (
			id, lot_number, variant_id, location_id, unit_cost_cents,
			on_hand, reserved, picked, status,
			receiving_ref, purchase_order_ref, inbound_shipment_ref, notes,
			received_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.LotNumber, lot.VariantID, lot.LocationID, lot.UnitCost,
		lot.OnHand, lot.Reserved, lot.Picked, string(lot.Status),
		lot.ReceivingRef, lot.PurchaseOrderRef, lot.InboundShipmentRef, lot.Notes,
		lot.ReceivedAt, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create lot %s: %w", lot.LotNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID (domain.ErrNotFound si no existe).
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM inventory_lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// ListActiveAt lista los lotes activos del par (variante, ubicación) en orden FIFO, sin bloquear.
func (r *LotRepo) ListActiveAt(ctx context.Context, variantID, locationID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE variant_id = $1 AND location_id = $2 AND status = 'active'
		` + fifoOrder
	return r.list(ctx, "list active lots", query, variantID, locationID)
}

// ListActiveAtForUpdate bloquea los lotes candidatos en orden FIFO; el orden fijo evita deadlocks
// entre transacciones que compiten por el mismo par.
func (r *LotRepo) ListActiveAtForUpdate(ctx context.Context, variantID, locationID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE variant_id = $1 AND location_id = $2 AND status = 'active'
		` + fifoOrder + `
		FOR UPDATE`
	return r.list(ctx, "lock active lots", query, variantID, locationID)
}

// ListActiveForVariant lista los lotes activos de la variante en todas las ubicaciones, en orden FIFO.
func (r *LotRepo) ListActiveForVariant(ctx context.Context, variantID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE variant_id = $1 AND status = 'active'
		` + fifoOrder
	return r.list(ctx, "list active lots for variant", query, variantID)
}

// ListActive lista los lotes activos de todo el inventario en orden FIFO. Con limit <= 0 no acota (LIMIT NULL).
func (r *LotRepo) ListActive(ctx context.Context, limit int) ([]*entity.Lot, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE status = 'active'
		` + fifoOrder + `
		LIMIT $1`
	return r.list(ctx, "list active lots", query, lim)
}

// UpdateCounters persiste on_hand, reserved, picked y status del lote. El costo no se toca.
func (r *LotRepo) UpdateCounters(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE inventory_lots
		SET on_hand = $2, reserved = $3, picked = $4, status = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lot.ID, lot.OnHand, lot.Reserved, lot.Picked, string(lot.Status))
	if err != nil {
		return fmt.Errorf("update lot counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountAt cuenta los lotes del par sin filtrar por estado.
func (r *LotRepo) CountAt(ctx context.Context, variantID, locationID string) (int, error) {
	query := `
		SELECT count(*) FROM inventory_lots
		WHERE variant_id = $1 AND location_id = $2`
	var n int
	if err := r.q.QueryRow(ctx, query, variantID, locationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lots: %w", err)
	}
	return n, nil
}

// MaxLotSequence toma un advisory lock transaccional por día antes de leer el máximo, de modo que dos
// creaciones concurrentes del mismo día no obtengan la misma secuencia.
func (r *LotRepo) MaxLotSequence(ctx context.Context, day time.Time) (int, error) {
	prefix := inventory.LotNumberDayPrefix(day)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
		return 0, fmt.Errorf("lock lot sequence: %w", err)
	}
	query := `
		SELECT COALESCE(MAX(substring(lot_number FROM length($1) + 1)::int), 0)
		FROM inventory_lots
		WHERE lot_number LIKE $1 || '%'`
	var seq int
	if err := r.q.QueryRow(ctx, query, prefix).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max lot sequence: %w", err)
	}
	return seq, nil
}

// ActiveTotalsForVariant suma cantidad en estante y valor de los lotes activos de la variante.
func (r *LotRepo) ActiveTotalsForVariant(ctx context.Context, variantID string) (entity.VariantValuation, error) {
	query := `
		SELECT COALESCE(SUM(on_hand), 0)::numeric,
		       COALESCE(SUM(on_hand::numeric * unit_cost_cents), 0)
		FROM inventory_lots
		WHERE variant_id = $1 AND status = 'active'`
	var qty, value decimal.Decimal
	if err := r.q.QueryRow(ctx, query, variantID).Scan(&qty, &value); err != nil {
		return entity.VariantValuation{}, fmt.Errorf("active totals for variant: %w", err)
	}
	return entity.VariantValuation{
		VariantID: variantID,
		Quantity:  qty.IntPart(),
		Value:     value.IntPart(),
	}, nil
}

// ValuationByVariant agrupa por variante los lotes activos con stock en estante, ordenado por variante.
func (r *LotRepo) ValuationByVariant(ctx context.Context) ([]entity.VariantValuation, error) {
	query := `
		SELECT variant_id,
		       SUM(on_hand)::numeric,
		       SUM(on_hand::numeric * unit_cost_cents)
		FROM inventory_lots
		WHERE status = 'active' AND on_hand > 0
		GROUP BY variant_id
		ORDER BY variant_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("valuation by variant: %w", err)
	}
	defer rows.Close()
	var out []entity.VariantValuation
	for rows.Next() {
		var (
			variantID  string
			qty, value decimal.Decimal
		)
		if err := rows.Scan(&variantID, &qty, &value); err != nil {
			return nil, fmt.Errorf("scan valuation: %w", err)
		}
		out = append(out, entity.VariantValuation{
			VariantID: variantID,
			Quantity:  qty.IntPart(),
			Value:     value.IntPart(),
		})
	}
	return out, rows.Err()
}

func (r *LotRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, lot)
	}
	return out, rows.Err()
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l      entity.Lot
		status string
	)
	err := row.Scan(
		&l.ID, &l.LotNumber, &l.VariantID, &l.LocationID, &l.UnitCost,
		&l.OnHand, &l.Reserved, &l.Picked, &status,
		&l.ReceivingRef, &l.PurchaseOrderRef, &l.InboundShipmentRef, &l.Notes,
		&l.ReceivedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LotStatus(status)
	return &l, nil
}
