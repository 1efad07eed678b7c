package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseDetailRequest línea de una compra.
type PurchaseDetailRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"dgt0,dscale=4"`
	Price     decimal.Decimal `json:"price" validate:"dgte0,dscale=4"`
}

// CreatePurchaseRequest body para POST /api/purchases. Status admite PENDING (defecto) u ORDERED.
type CreatePurchaseRequest struct {
	SupplierID   string                  `json:"supplier_id,omitempty"`
	SupplierName string                  `json:"supplier_name,omitempty"`
	Status       string                  `json:"status,omitempty" validate:"omitempty,oneof=PENDING ORDERED"`
	Notes        string                  `json:"notes,omitempty"`
	Details      []PurchaseDetailRequest `json:"details" validate:"min=1,unique=ProductID,dive"`
}

// UpdatePurchaseRequest body para PUT /api/purchases/:id; reemplaza cabecera y detalles.
type UpdatePurchaseRequest struct {
	SupplierID   string                  `json:"supplier_id,omitempty"`
	SupplierName string                  `json:"supplier_name,omitempty"`
	Notes        string                  `json:"notes,omitempty"`
	Details      []PurchaseDetailRequest `json:"details" validate:"min=1,unique=ProductID,dive"`
}

// PurchaseListQuery filtros de GET /api/purchases.
type PurchaseListQuery struct {
	PageRequest
	Status       string           `query:"status"`
	SupplierName string           `query:"supplier_name"`
	TotalAmount  *decimal.Decimal `query:"-"`
}

// ReceiveItemRequest datos de recepción de una línea. DetailID identifica la línea; ProductID
// basta solo cuando el producto aparece en una única línea de la compra.
type ReceiveItemRequest struct {
	DetailID          string           `json:"detail_id,omitempty"`
	ProductID         string           `json:"product_id,omitempty" validate:"required_without=DetailID"`
	QuantityReceived  *decimal.Decimal `json:"quantity_received,omitempty" validate:"omitnil,dgte0,dscale=4"`
	LotNumber         string           `json:"lot_number,omitempty" validate:"max=100"`
	ExpirationDate    *time.Time       `json:"expiration_date,omitempty"`
	QualityCheck      string           `json:"quality_check,omitempty" validate:"omitempty,oneof=PENDING APPROVED REJECTED PARTIALLY_APPROVED"`
	QualityNotes      string           `json:"quality_notes,omitempty"`
	WarehouseLocation string           `json:"warehouse_location,omitempty"`
}

// ReceivePurchaseRequest body para POST /api/purchases/:id/receive.
type ReceivePurchaseRequest struct {
	ActualDeliveryDate *time.Time           `json:"actual_delivery_date,omitempty"`
	ReceivedBy         string               `json:"received_by,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	Items              []ReceiveItemRequest `json:"items,omitempty" validate:"dive"`
}

// InvoicePurchaseRequest body para POST /api/purchases/:id/invoice y /complete.
type InvoicePurchaseRequest struct {
	InvoiceNumber string `json:"invoice_number" validate:"required"`
}

// PurchaseDetailResponse línea de compra en respuestas.
type PurchaseDetailResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	ProductName       string           `json:"product_name"`
	Quantity          decimal.Decimal  `json:"quantity"`
	QuantityReceived  *decimal.Decimal `json:"quantity_received,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	TotalAmount       decimal.Decimal  `json:"total_amount"`
	LotNumber         string           `json:"lot_number,omitempty"`
	EntryDate         *time.Time       `json:"entry_date,omitempty"`
	ExpirationDate    *time.Time       `json:"expiration_date,omitempty"`
	QualityCheck      string           `json:"quality_check,omitempty"`
	QualityNotes      string           `json:"quality_notes,omitempty"`
	WarehouseLocation string           `json:"warehouse_location,omitempty"`
}

// PurchaseResponse compra en respuestas.
type PurchaseResponse struct {
	ID                 string                   `json:"id"`
	BusinessID         string                   `json:"business_id"`
	SupplierID         string                   `json:"supplier_id,omitempty"`
	SupplierName       string                   `json:"supplier_name,omitempty"`
	TotalAmount        decimal.Decimal          `json:"total_amount"`
	Status             string                   `json:"status"`
	ActualDeliveryDate *time.Time               `json:"actual_delivery_date,omitempty"`
	ReceivedBy         string                   `json:"received_by,omitempty"`
	InvoiceNumber      string                   `json:"invoice_number,omitempty"`
	Notes              string                   `json:"notes,omitempty"`
	Details            []PurchaseDetailResponse `json:"details"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// PurchaseListResponse lista paginada de compras.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BackorderLine diferencia entre lo ordenado y lo recibido de una línea.
type BackorderLine struct {
	DetailID  string          `json:"detail_id"`
	ProductID string          `json:"product_id"`
	Ordered   decimal.Decimal `json:"ordered"`
	Received  decimal.Decimal `json:"received"`
	Missing   decimal.Decimal `json:"missing"`
}

// ReceivePurchaseResponse resultado de la recepción.
type ReceivePurchaseResponse struct {
	Purchase   PurchaseResponse `json:"purchase"`
	Lots       []LotResponse    `json:"lots"`
	Stock      []StockResponse  `json:"stock"`
	Backorders []BackorderLine  `json:"backorders,omitempty"`
}
