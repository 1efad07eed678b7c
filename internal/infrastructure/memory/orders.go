package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type purchaseRepo struct {
	st *state
}

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	if _, ok := r.st.purchases[p.ID]; ok {
		return fmt.Errorf("%w: compra %s", domain.ErrDuplicate, p.ID)
	}
	r.st.purchases[p.ID] = p.Clone()
	r.st.order[p.ID] = r.st.next()
	return nil
}

func (r *purchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	p, ok := r.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// GetForUpdate el mutex del store ya serializa la unidad de trabajo.
func (r *purchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	if _, ok := r.st.purchases[p.ID]; !ok {
		return fmt.Errorf("%w: compra %s", domain.ErrNotFound, p.ID)
	}
	r.st.purchases[p.ID] = p.Clone()
	return nil
}

func (r *purchaseRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.purchases[id]; !ok {
		return fmt.Errorf("%w: compra %s", domain.ErrNotFound, id)
	}
	delete(r.st.purchases, id)
	delete(r.st.order, id)
	return nil
}

func (r *purchaseRepo) List(_ context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, int, error) {
	f.Normalize()
	name := strings.ToLower(f.SupplierName)
	var out []*entity.Purchase
	for _, p := range r.st.purchases {
		if f.BusinessID != "" && p.BusinessID != f.BusinessID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.SupplierName), name) {
			continue
		}
		if f.TotalAmount != nil && !p.TotalAmount.Equal(*f.TotalAmount) {
			continue
		}
		out = append(out, p.Clone())
	}
	sortItems(out, f.OrderDirection == "desc", func(a, b *entity.Purchase) int {
		c := compareHeader(f.OrderBy, "supplierName",
			header{a.SupplierName, a.TotalAmount, string(a.Status), a.CreatedAt, a.UpdatedAt},
			header{b.SupplierName, b.TotalAmount, string(b.Status), b.CreatedAt, b.UpdatedAt})
		if c == 0 {
			c = cmpInt64(r.st.order[a.ID], r.st.order[b.ID])
		}
		return c
	})
	return paginate(out, f.ListParams), len(out), nil
}

type saleRepo struct {
	st *state
}

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	if _, ok := r.st.sales[s.ID]; ok {
		return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, s.ID)
	}
	r.st.sales[s.ID] = s.Clone()
	r.st.order[s.ID] = r.st.next()
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) Update(_ context.Context, s *entity.Sale) error {
	if _, ok := r.st.sales[s.ID]; !ok {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, s.ID)
	}
	r.st.sales[s.ID] = s.Clone()
	return nil
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	f.Normalize()
	name := strings.ToLower(f.CustomerName)
	var out []*entity.Sale
	for _, s := range r.st.sales {
		if f.BusinessID != "" && s.BusinessID != f.BusinessID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(s.CustomerName), name) {
			continue
		}
		if f.TotalAmount != nil && !s.TotalAmount.Equal(*f.TotalAmount) {
			continue
		}
		out = append(out, s.Clone())
	}
	sortItems(out, f.OrderDirection == "desc", func(a, b *entity.Sale) int {
		c := compareHeader(f.OrderBy, "customerName",
			header{a.CustomerName, a.TotalAmount, string(a.Status), a.CreatedAt, a.UpdatedAt},
			header{b.CustomerName, b.TotalAmount, string(b.Status), b.CreatedAt, b.UpdatedAt})
		if c == 0 {
			c = cmpInt64(r.st.order[a.ID], r.st.order[b.ID])
		}
		return c
	})
	return paginate(out, f.ListParams), len(out), nil
}

// header campos ordenables comunes a compras y ventas.
type header struct {
	party     string
	total     decimal.Decimal
	status    string
	createdAt time.Time
	updatedAt time.Time
}

func compareHeader(orderBy, partyKey string, a, b header) int {
	switch orderBy {
	case partyKey:
		return strings.Compare(strings.ToLower(a.party), strings.ToLower(b.party))
	case "totalAmount":
		return a.total.Cmp(b.total)
	case "status":
		return strings.Compare(a.status, b.status)
	case "updatedAt":
		return a.updatedAt.Compare(b.updatedAt)
	}
	return a.createdAt.Compare(b.createdAt)
}
