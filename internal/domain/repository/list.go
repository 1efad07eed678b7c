package repository

import (
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Valores por defecto de paginación.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListParams paginación y orden comunes a los listados (page inicia en 1).
type ListParams struct {
	Page           int
	Limit          int
	OrderBy        string
	OrderDirection string // asc | desc
}

// Normalize aplica valores por defecto y límites.
func (p *ListParams) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.OrderDirection != "asc" {
		p.OrderDirection = "desc"
	}
}

// Offset desplazamiento para la página actual.
func (p ListParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// ProductFilter filtros del catálogo. Search busca en SKU y nombre sin distinguir mayúsculas.
// OrderBy admite name, sku, price, stock, createdAt, updatedAt.
type ProductFilter struct {
	ListParams
	BusinessID      string
	Search          string
	IncludeInactive bool
}

// PurchaseFilter filtros del listado de compras.
// OrderBy admite supplierName, totalAmount, status, createdAt, updatedAt.
type PurchaseFilter struct {
	ListParams
	BusinessID   string
	Status       entity.PurchaseStatus
	SupplierName string // coincidencia parcial sin distinguir mayúsculas
	TotalAmount  *decimal.Decimal
}

// SaleFilter filtros del listado de ventas.
// OrderBy admite customerName, totalAmount, status, createdAt, updatedAt.
type SaleFilter struct {
	ListParams
	BusinessID   string
	Status       entity.SaleStatus
	CustomerName string
	TotalAmount  *decimal.Decimal
}
