package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

type lotRepo struct {
	st *state
}

func (r *lotRepo) Create(_ context.Context, lot *entity.InventoryLot) error {
	if err := lot.Validate(); err != nil {
		return err
	}
	if _, ok := r.st.lots[lot.ID]; ok {
		return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, lot.ID)
	}
	for _, id := range r.st.lotsByProduct[lot.ProductID] {
		if r.st.lots[id].lot.LotNumber == lot.LotNumber {
			return fmt.Errorf("%w: lote %s del producto %s", domain.ErrDuplicate, lot.LotNumber, lot.ProductID)
		}
	}
	stored := storedLot{lot: *lot, seq: r.st.next()}
	r.st.lots[lot.ID] = stored

	// inserción ordenada en el índice FIFO
	idx := r.st.lotsByProduct[lot.ProductID]
	pos := sort.Search(len(idx), func(i int) bool {
		other := r.st.lots[idx[i]]
		return fifoLess(stored, other)
	})
	idx = append(idx, "")
	copy(idx[pos+1:], idx[pos:])
	idx[pos] = lot.ID
	r.st.lotsByProduct[lot.ProductID] = idx
	return nil
}

func fifoLess(a, b storedLot) bool {
	if !a.lot.EntryDate.Equal(b.lot.EntryDate) {
		return a.lot.EntryDate.Before(b.lot.EntryDate)
	}
	return a.seq < b.seq
}

func (r *lotRepo) Update(_ context.Context, lot *entity.InventoryLot) error {
	stored, ok := r.st.lots[lot.ID]
	if !ok {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lot.ID)
	}
	if lot.AvailableQuantity.GreaterThan(stored.lot.AvailableQuantity) {
		return fmt.Errorf("%w: el disponible de un lote no puede aumentar", domain.ErrConflict)
	}
	stored.lot.AvailableQuantity = lot.AvailableQuantity
	stored.lot.Status = lot.Status
	stored.lot.UpdatedAt = lot.UpdatedAt
	if err := stored.lot.Validate(); err != nil {
		return err
	}
	r.st.lots[lot.ID] = stored
	return nil
}

func (r *lotRepo) GetByProductAndNumber(_ context.Context, productID, lotNumber string) (*entity.InventoryLot, error) {
	for _, id := range r.st.lotsByProduct[productID] {
		if l := r.st.lots[id].lot; l.LotNumber == lotNumber {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *lotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.InventoryLot, error) {
	return r.collect(productID, func(*entity.InventoryLot) bool { return true }), nil
}

func (r *lotRepo) ListActiveByProduct(_ context.Context, productID string) ([]*entity.InventoryLot, error) {
	return r.collect(productID, (*entity.InventoryLot).IsActive), nil
}

// ListActiveByProductForUpdate la unidad de trabajo ya está serializada por el mutex del store.
func (r *lotRepo) ListActiveByProductForUpdate(ctx context.Context, productID string) ([]*entity.InventoryLot, error) {
	return r.ListActiveByProduct(ctx, productID)
}

func (r *lotRepo) ListExpiredActive(_ context.Context, businessID string, asOf time.Time) ([]*entity.InventoryLot, error) {
	var out []*entity.InventoryLot
	for productID, ids := range r.st.lotsByProduct {
		if businessID != "" && r.st.products[productID].BusinessID != businessID {
			continue
		}
		for _, id := range ids {
			l := r.st.lots[id].lot
			if l.IsActive() && l.IsExpiredAt(asOf) {
				out = append(out, &l)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return fifoLess(r.st.lots[out[i].ID], r.st.lots[out[j].ID])
	})
	return out, nil
}

func (r *lotRepo) collect(productID string, keep func(*entity.InventoryLot) bool) []*entity.InventoryLot {
	ids := r.st.lotsByProduct[productID]
	out := make([]*entity.InventoryLot, 0, len(ids))
	for _, id := range ids {
		l := r.st.lots[id].lot
		if keep(&l) {
			out = append(out, &l)
		}
	}
	return out
}

type movementRepo struct {
	st *state
}

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.st.movements = append(r.st.movements, *m)
	return nil
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.ProductID == productID }), nil
}

func (r *movementRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.Reference == reference }), nil
}

func (r *movementRepo) filter(keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	var out []*entity.StockMovement
	for i := range r.st.movements {
		m := r.st.movements[i]
		if keep(&m) {
			out = append(out, &m)
		}
	}
	return out
}
