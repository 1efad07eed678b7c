package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleDetailRequest línea de venta. Sin precio se usa el precio de catálogo.
type SaleDetailRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"dgt0,dscale=4"`
	Price     *decimal.Decimal `json:"price,omitempty" validate:"omitnil,dgte0,dscale=4"`
}

// CreateSaleRequest body para POST /api/sales. Status COMPLETED completa la venta al crearla.
type CreateSaleRequest struct {
	CustomerID   string              `json:"customer_id,omitempty"`
	CustomerName string              `json:"customer_name,omitempty"`
	Status       string              `json:"status,omitempty" validate:"omitempty,oneof=PENDING COMPLETED"`
	Details      []SaleDetailRequest `json:"details" validate:"min=1,dive"`
}

// UpdateSaleRequest body para PUT /api/sales/:id.
type UpdateSaleRequest struct {
	CustomerID   string              `json:"customer_id,omitempty"`
	CustomerName string              `json:"customer_name,omitempty"`
	Details      []SaleDetailRequest `json:"details" validate:"min=1,dive"`
}

// SaleListQuery filtros de GET /api/sales.
type SaleListQuery struct {
	PageRequest
	Status       string           `query:"status"`
	CustomerName string           `query:"customer_name"`
	TotalAmount  *decimal.Decimal `query:"-"`
}

// SaleDetailResponse línea de venta en respuestas.
type SaleDetailResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SaleResponse venta en respuestas.
type SaleResponse struct {
	ID           string               `json:"id"`
	BusinessID   string               `json:"business_id"`
	CustomerID   string               `json:"customer_id,omitempty"`
	CustomerName string               `json:"customer_name,omitempty"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	Status       string               `json:"status"`
	Details      []SaleDetailResponse `json:"details"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// AllocationResponse porción consumida de un lote.
type AllocationResponse struct {
	LotID     string          `json:"lot_id"`
	LotNumber string          `json:"lot_number"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// SaleLineResult consumo de una línea de la venta.
type SaleLineResult struct {
	ProductID   string               `json:"product_id"`
	Requested   decimal.Decimal      `json:"requested"`
	Consumed    decimal.Decimal      `json:"consumed"`
	Shortage    decimal.Decimal      `json:"shortage"`
	Allocations []AllocationResponse `json:"allocations"`
}

// SaleCompletionResponse resultado de completar una venta.
type SaleCompletionResponse struct {
	Sale          SaleResponse     `json:"sale"`
	Lines         []SaleLineResult `json:"lines"`
	TotalShortage decimal.Decimal  `json:"total_shortage"`
}
