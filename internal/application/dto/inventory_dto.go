package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/inventory/movements (anotaciones ADJUSTMENT/TRANSFER).
type RecordMovementRequest struct {
	Type      string           `json:"type" validate:"required,oneof=ADJUSTMENT TRANSFER"`
	ProductID string           `json:"product_id" validate:"required"`
	LotNumber string           `json:"lot_number,omitempty" validate:"max=100"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"dgte0,dscale=4"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitnil,dgte0,dscale=4"`
	Reference string           `json:"reference,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// MovementResponse movimiento del kardex.
type MovementResponse struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	ProductID   string           `json:"product_id"`
	LotNumber   string           `json:"lot_number,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference   string           `json:"reference,omitempty"`
	PerformedBy string           `json:"performed_by"`
	Timestamp   time.Time        `json:"timestamp"`
	Notes       string           `json:"notes,omitempty"`
}

// LotResponse lote de inventario.
type LotResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	LotNumber         string          `json:"lot_number"`
	Quantity          decimal.Decimal `json:"quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EntryDate         time.Time       `json:"entry_date"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	PurchaseID        string          `json:"purchase_id,omitempty"`
	Location          string          `json:"location,omitempty"`
	Status            string          `json:"status"`
}

// StockResponse vista agregada de stock.
type StockResponse struct {
	ProductID     string          `json:"product_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	AvailableLots int             `json:"available_lots"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// AvailabilityResponse disponibilidad actual con los lotes que la componen.
type AvailabilityResponse struct {
	ProductID string          `json:"product_id"`
	Available decimal.Decimal `json:"available"`
	Lots      []LotResponse   `json:"lots"`
}

// ExpireLotsRequest body para POST /api/inventory/lots/expire. Sin as_of usa la hora actual.
type ExpireLotsRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

// ExpireLotsResponse resultado del barrido de vencimientos.
type ExpireLotsResponse struct {
	Expired  []LotResponse   `json:"expired"`
	Products []StockResponse `json:"products"`
}
