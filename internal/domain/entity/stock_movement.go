package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento en el kardex de lotes.
type MovementType string

const (
	MovementPurchaseIn MovementType = "PURCHASE_IN" // entrada por recepción de compra
	MovementSaleOut    MovementType = "SALE_OUT"    // salida por venta
	MovementAdjustment MovementType = "ADJUSTMENT"  // ajuste
	MovementTransfer   MovementType = "TRANSFER"    // traslado entre ubicaciones
)

// IsValid indica si el tipo es conocido.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchaseIn, MovementSaleOut, MovementAdjustment, MovementTransfer:
		return true
	}
	return false
}

// StockMovement es un registro inmutable del kardex. Quantity es siempre una magnitud positiva;
// la dirección la indica Type.
type StockMovement struct {
	ID          string
	Type        MovementType
	ProductID   string
	LotNumber   string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	Reference   string // ID de compra, venta, nota de ajuste
	PerformedBy string // UserID o "system"
	Timestamp   time.Time
	Notes       string
}

// Validate rechaza movimientos mal formados.
func (m *StockMovement) Validate() error {
	switch {
	case !m.Type.IsValid():
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, m.Type)
	case m.ProductID == "":
		return fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	case m.Quantity.IsNegative():
		return fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	case m.UnitCost != nil && m.UnitCost.IsNegative():
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	return nil
}
