package repository

import (
	"context"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBusinessAndSKU(ctx context.Context, businessID, sku string) (*entity.Product, error)
	// Update modifica datos de catálogo y el flag Active; Cost y Stock tienen sus propios métodos.
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// IsReferenced indica si el producto tiene lotes, movimientos o líneas de compra o venta.
	IsReferenced(ctx context.Context, productID string) (bool, error)
	// Delete borra físicamente un producto sin historial.
	Delete(ctx context.Context, productID string) error
}
