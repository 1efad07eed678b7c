package repository

import (
	"context"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	// Delete falla con domain.ErrConflict si el cliente está referenciado por una venta.
	Delete(ctx context.Context, id string) error
	ListByBusiness(ctx context.Context, businessID string, params ListParams) ([]*entity.Customer, int, error)
}
