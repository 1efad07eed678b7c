package repository

import (
	"context"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// PurchaseRepository persistencia de compras con sus detalles.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	// GetForUpdate bloquea la compra hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	// Update reemplaza cabecera y detalles.
	Update(ctx context.Context, purchase *entity.Purchase) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PurchaseFilter) ([]*entity.Purchase, int, error)
}
