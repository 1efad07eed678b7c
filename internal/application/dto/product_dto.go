package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"dgte0,dscale=4"`
	MinStock    decimal.Decimal `json:"min_stock" validate:"dgte0,dscale=4"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni Stock).
// Active=true reactiva un producto dado de baja.
type UpdateProductRequest struct {
	SKU         *string          `json:"sku" validate:"omitnil,min=1,max=64"`
	Name        *string          `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitnil,dgte0,dscale=4"`
	MinStock    *decimal.Decimal `json:"min_stock" validate:"omitnil,dgte0,dscale=4"`
	Active      *bool            `json:"active"`
}

// ProductListQuery filtros de GET /api/products. Search busca por SKU o nombre.
type ProductListQuery struct {
	PageRequest
	Search          string `query:"search"`
	IncludeInactive bool   `query:"include_inactive"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	BusinessID  string          `json:"business_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DeleteProductResponse resultado de DELETE /api/products/:id. Un producto con historial no se
// borra: queda inactivo y se devuelve en Product.
type DeleteProductResponse struct {
	Deleted bool             `json:"deleted"`
	Product *ProductResponse `json:"product,omitempty"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
