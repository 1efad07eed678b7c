package repository

import (
	"context"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	// Delete falla con domain.ErrConflict si el proveedor está referenciado por una compra.
	Delete(ctx context.Context, id string) error
	ListByBusiness(ctx context.Context, businessID string, params ListParams) ([]*entity.Supplier, int, error)
}
