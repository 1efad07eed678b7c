package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
)

// SupplierRepository directorio de proveedores en memoria.
type SupplierRepository struct {
	store *Store
}

var _ repository.SupplierRepository = (*SupplierRepository)(nil)

func (r *SupplierRepository) Create(_ context.Context, s *entity.Supplier) error {
	r.store.dirMu.Lock()
	defer r.store.dirMu.Unlock()
	if _, ok := r.store.suppliers[s.ID]; ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrDuplicate, s.ID)
	}
	r.store.suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepository) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.store.dirMu.RLock()
	defer r.store.dirMu.RUnlock()
	s, ok := r.store.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SupplierRepository) Update(_ context.Context, s *entity.Supplier) error {
	r.store.dirMu.Lock()
	defer r.store.dirMu.Unlock()
	current, ok := r.store.suppliers[s.ID]
	if !ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, s.ID)
	}
	s.BusinessID, s.CreatedAt = current.BusinessID, current.CreatedAt
	r.store.suppliers[s.ID] = *s
	return nil
}

// Delete toma mu antes que dirMu para ver solo compras confirmadas.
func (r *SupplierRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.state.purchases {
		if p.SupplierID == id {
			return fmt.Errorf("%w: el proveedor %s tiene compras", domain.ErrConflict, id)
		}
	}
	r.store.dirMu.Lock()
	defer r.store.dirMu.Unlock()
	if _, ok := r.store.suppliers[id]; !ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	delete(r.store.suppliers, id)
	return nil
}

func (r *SupplierRepository) ListByBusiness(_ context.Context, businessID string, params repository.ListParams) ([]*entity.Supplier, int, error) {
	params.Normalize()
	r.store.dirMu.RLock()
	var out []*entity.Supplier
	for _, s := range r.store.suppliers {
		if s.BusinessID == businessID {
			s := s
			out = append(out, &s)
		}
	}
	r.store.dirMu.RUnlock()
	sortItems(out, false, func(a, b *entity.Supplier) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(out, params), len(out), nil
}

// CustomerRepository directorio de clientes en memoria.
type CustomerRepository struct {
	store *Store
}

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) Create(_ context.Context, c *entity.Customer) error {
	r.store.dirMu.Lock()
	defer r.store.dirMu.Unlock()
	if _, ok := r.store.customers[c.ID]; ok {
		return fmt.Errorf("%w: cliente %s", domain.ErrDuplicate, c.ID)
	}
	r.store.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.store.dirMu.RLock()
	defer r.store.dirMu.RUnlock()
	c, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CustomerRepository) Update(_ context.Context, c *entity.Customer) error {
	r.store.dirMu.Lock()
	defer r.store.dirMu.Unlock()
	current, ok := r.store.customers[c.ID]
	if !ok {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, c.ID)
	}
	c.BusinessID, c.CreatedAt = current.BusinessID, current.CreatedAt
	r.store.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.state.sales {
		if s.CustomerID == id {
			return fmt.Errorf("%w: el cliente %s tiene ventas", domain.ErrConflict, id)
		}
	}
	r.store.dirMu.Lock()
	defer r.store.dirMu.Unlock()
	if _, ok := r.store.customers[id]; !ok {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	delete(r.store.customers, id)
	return nil
}

func (r *CustomerRepository) ListByBusiness(_ context.Context, businessID string, params repository.ListParams) ([]*entity.Customer, int, error) {
	params.Normalize()
	r.store.dirMu.RLock()
	var out []*entity.Customer
	for _, c := range r.store.customers {
		if c.BusinessID == businessID {
			c := c
			out = append(out, &c)
		}
	}
	r.store.dirMu.RUnlock()
	sortItems(out, false, func(a, b *entity.Customer) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(out, params), len(out), nil
}
