package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type productRepo struct {
	st *state
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.ID]; ok {
		return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, p.ID)
	}
	for _, other := range r.st.products {
		if other.BusinessID == p.BusinessID && strings.EqualFold(other.SKU, p.SKU) {
			return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
		}
	}
	r.st.products[p.ID] = *p
	r.st.order[p.ID] = r.st.next()
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetByBusinessAndSKU(_ context.Context, businessID, sku string) (*entity.Product, error) {
	for _, p := range r.st.products {
		if p.BusinessID == businessID && strings.EqualFold(p.SKU, sku) {
			return &p, nil
		}
	}
	return nil, nil
}

// Update modifica los datos de catálogo; costo y stock tienen sus propios métodos.
func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	current, ok := r.st.products[p.ID]
	if !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
	}
	current.SKU = p.SKU
	current.Name = p.Name
	current.Description = p.Description
	current.Price = p.Price
	current.MinStock = p.MinStock
	current.Active = p.Active
	current.UpdatedAt = p.UpdatedAt
	r.st.products[p.ID] = current
	return nil
}

func (r *productRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	p, ok := r.st.products[productID]
	if !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	p.Cost = cost
	r.st.products[productID] = p
	return nil
}

func (r *productRepo) UpdateStock(_ context.Context, productID string, stock decimal.Decimal) error {
	p, ok := r.st.products[productID]
	if !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	p.Stock = stock
	r.st.products[productID] = p
	return nil
}

func (r *productRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	params := filter.ListParams
	params.Normalize()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []*entity.Product
	for _, p := range r.st.products {
		if p.BusinessID != filter.BusinessID || (!p.Active && !filter.IncludeInactive) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.SKU), search) && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sortItems(out, params.OrderDirection == "desc", func(a, b *entity.Product) int {
		var c int
		switch params.OrderBy {
		case "name":
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "sku":
			c = strings.Compare(a.SKU, b.SKU)
		case "price":
			c = a.Price.Cmp(b.Price)
		case "stock":
			c = a.Stock.Cmp(b.Stock)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmpInt64(r.st.order[a.ID], r.st.order[b.ID])
		}
		return c
	})
	return paginate(out, params), len(out), nil
}

func (r *productRepo) IsReferenced(_ context.Context, productID string) (bool, error) {
	if len(r.st.lotsByProduct[productID]) > 0 {
		return true, nil
	}
	for i := range r.st.movements {
		if r.st.movements[i].ProductID == productID {
			return true, nil
		}
	}
	for _, p := range r.st.purchases {
		for _, d := range p.Details {
			if d.ProductID == productID {
				return true, nil
			}
		}
	}
	for _, s := range r.st.sales {
		for _, d := range s.Details {
			if d.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *productRepo) Delete(ctx context.Context, productID string) error {
	if _, ok := r.st.products[productID]; !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if used, _ := r.IsReferenced(ctx, productID); used {
		return fmt.Errorf("%w: el producto %s tiene historial", domain.ErrConflict, productID)
	}
	delete(r.st.products, productID)
	delete(r.st.order, productID)
	return nil
}

// sortItems ordena con cmp; desc invierte el resultado completo, incluido el desempate.
func sortItems[T any](items []T, desc bool, cmp func(a, b T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate[T any](items []T, params repository.ListParams) []T {
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ProductRepository implementa repository.ProductRepository sobre el store; cada llamada es
// una unidad de trabajo independiente.
type ProductRepository struct {
	store *Store
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (p *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return p.store.Run(ctx, func(r ports.Repos) error { return r.Products.Create(ctx, product) })
}

func (p *ProductRepository) GetByID(ctx context.Context, id string) (out *entity.Product, err error) {
	err = p.store.Run(ctx, func(r ports.Repos) error {
		out, err = r.Products.GetByID(ctx, id)
		return err
	})
	return out, err
}

func (p *ProductRepository) GetByBusinessAndSKU(ctx context.Context, businessID, sku string) (out *entity.Product, err error) {
	err = p.store.Run(ctx, func(r ports.Repos) error {
		out, err = r.Products.GetByBusinessAndSKU(ctx, businessID, sku)
		return err
	})
	return out, err
}

func (p *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return p.store.Run(ctx, func(r ports.Repos) error { return r.Products.Update(ctx, product) })
}

func (p *ProductRepository) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	return p.store.Run(ctx, func(r ports.Repos) error { return r.Products.UpdateCost(ctx, productID, cost) })
}

func (p *ProductRepository) UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error {
	return p.store.Run(ctx, func(r ports.Repos) error { return r.Products.UpdateStock(ctx, productID, stock) })
}

func (p *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (out []*entity.Product, total int, err error) {
	err = p.store.Run(ctx, func(r ports.Repos) error {
		out, total, err = r.Products.List(ctx, filter)
		return err
	})
	return out, total, err
}

func (p *ProductRepository) IsReferenced(ctx context.Context, productID string) (used bool, err error) {
	err = p.store.Run(ctx, func(r ports.Repos) error {
		used, err = r.Products.IsReferenced(ctx, productID)
		return err
	})
	return used, err
}

func (p *ProductRepository) Delete(ctx context.Context, productID string) error {
	return p.store.Run(ctx, func(r ports.Repos) error { return r.Products.Delete(ctx, productID) })
}
