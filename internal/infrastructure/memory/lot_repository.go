package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación en memoria de LotRepository, atada a una transacción de Store.
type LotRepo struct {
	st *state
}

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if _, ok := r.st.lots[lot.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, l := range r.st.lots {
		if l.LotNumber == lot.LotNumber {
			return domain.ErrDuplicate
		}
	}
	r.st.lots[lot.ID] = *lot
	return nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	l, ok := r.st.lots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *LotRepo) ListActiveAt(_ context.Context, variantID, locationID string) ([]*entity.Lot, error) {
	return r.active(func(l *entity.Lot) bool {
		return l.VariantID == variantID && l.LocationID == locationID
	}), nil
}

// ListActiveAtForUpdate no necesita bloqueo adicional: Store serializa las transacciones.
func (r *LotRepo) ListActiveAtForUpdate(ctx context.Context, variantID, locationID string) ([]*entity.Lot, error) {
	return r.ListActiveAt(ctx, variantID, locationID)
}

func (r *LotRepo) ListActiveForVariant(_ context.Context, variantID string) ([]*entity.Lot, error) {
	return r.active(func(l *entity.Lot) bool { return l.VariantID == variantID }), nil
}

func (r *LotRepo) ListActive(_ context.Context, limit int) ([]*entity.Lot, error) {
	lots := r.active(func(*entity.Lot) bool { return true })
	if limit > 0 && len(lots) > limit {
		lots = lots[:limit]
	}
	return lots, nil
}

func (r *LotRepo) UpdateCounters(_ context.Context, lot *entity.Lot) error {
	stored, ok := r.st.lots[lot.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.OnHand = lot.OnHand
	stored.Reserved = lot.Reserved
	stored.Picked = lot.Picked
	stored.Status = lot.Status
	stored.UpdatedAt = time.Now()
	r.st.lots[lot.ID] = stored
	return nil
}

func (r *LotRepo) CountAt(_ context.Context, variantID, locationID string) (int, error) {
	n := 0
	for _, l := range r.st.lots {
		if l.VariantID == variantID && l.LocationID == locationID {
			n++
		}
	}
	return n, nil
}

func (r *LotRepo) MaxLotSequence(_ context.Context, day time.Time) (int, error) {
	prefix := inventory.LotNumberDayPrefix(day)
	maxSeq := 0
	for _, l := range r.st.lots {
		if !strings.HasPrefix(l.LotNumber, prefix) {
			continue
		}
		if _, seq, err := inventory.ParseLotNumber(l.LotNumber); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}

func (r *LotRepo) ActiveTotalsForVariant(_ context.Context, variantID string) (entity.VariantValuation, error) {
	v := entity.VariantValuation{VariantID: variantID}
	for _, l := range r.st.lots {
		if l.VariantID != variantID || !l.IsActive() {
			continue
		}
		v.Quantity += int64(l.OnHand)
		v.Value += int64(l.OnHand) * l.UnitCost
	}
	return v, nil
}

func (r *LotRepo) ValuationByVariant(_ context.Context) ([]entity.VariantValuation, error) {
	byVariant := make(map[string]*entity.VariantValuation)
	for _, l := range r.st.lots {
		if !l.IsActive() || l.OnHand <= 0 {
			continue
		}
		v, ok := byVariant[l.VariantID]
		if !ok {
			v = &entity.VariantValuation{VariantID: l.VariantID}
			byVariant[l.VariantID] = v
		}
		v.Quantity += int64(l.OnHand)
		v.Value += int64(l.OnHand) * l.UnitCost
	}
	out := make([]entity.VariantValuation, 0, len(byVariant))
	for _, v := range byVariant {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out, nil
}

// active copia los lotes activos que cumplen match, en orden FIFO.
func (r *LotRepo) active(match func(*entity.Lot) bool) []*entity.Lot {
	var out []*entity.Lot
	for _, l := range r.st.lots {
		l := l
		if l.IsActive() && match(&l) {
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return fifoLess(out[i], out[j]) })
	return out
}

func fifoLess(a, b *entity.Lot) bool {
	if !a.ReceivedAt.Equal(b.ReceivedAt) {
		return a.ReceivedAt.Before(b.ReceivedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return inventory.CompareLotNumbers(a.LotNumber, b.LotNumber) < 0
}
