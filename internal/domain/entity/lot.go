package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/shopspring/decimal"
)

// LotStatus estado de un lote de inventario.
type LotStatus string

const (
	LotStatusActive   LotStatus = "ACTIVE"
	LotStatusExpired  LotStatus = "EXPIRED"
	LotStatusConsumed LotStatus = "CONSUMED"
)

// InventoryLot representa un lote trazable de un producto, creado al recibir una compra.
// AvailableQuantity nunca supera Quantity y solo disminuye; llega a 0 exactamente cuando el lote pasa a CONSUMED.
// Los lotes no se eliminan (auditoría).
type InventoryLot struct {
	ID                string
	ProductID         string
	LotNumber         string // único por producto
	Quantity          decimal.Decimal
	AvailableQuantity decimal.Decimal
	UnitCost          decimal.Decimal
	EntryDate         time.Time
	ExpirationDate    *time.Time
	SupplierID        string
	PurchaseID        string
	Location          string
	Status            LotStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive indica si el lote participa en el stock disponible.
func (l *InventoryLot) IsActive() bool {
	return l.Status == LotStatusActive
}

// Consume descuenta hasta qty del disponible y devuelve lo efectivamente consumido.
// Pasa el lote a CONSUMED cuando el disponible llega a cero.
func (l *InventoryLot) Consume(qty decimal.Decimal, now time.Time) decimal.Decimal {
	if !l.IsActive() || !qty.IsPositive() || !l.AvailableQuantity.IsPositive() {
		return decimal.Zero
	}
	taken := decimal.Min(qty, l.AvailableQuantity)
	l.AvailableQuantity = l.AvailableQuantity.Sub(taken)
	if l.AvailableQuantity.IsZero() {
		l.Status = LotStatusConsumed
	}
	l.UpdatedAt = now
	return taken
}

// IsExpiredAt indica si la fecha de vencimiento es anterior a asOf.
func (l *InventoryLot) IsExpiredAt(asOf time.Time) bool {
	return l.ExpirationDate != nil && l.ExpirationDate.Before(asOf)
}

// Expire marca el lote como vencido. Solo aplica a lotes activos; el disponible se conserva.
func (l *InventoryLot) Expire(now time.Time) bool {
	if !l.IsActive() {
		return false
	}
	l.Status = LotStatusExpired
	l.UpdatedAt = now
	return true
}

// Validate verifica los invariantes del lote antes de persistirlo.
func (l *InventoryLot) Validate() error {
	switch {
	case l.ProductID == "":
		return fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	case l.LotNumber == "":
		return fmt.Errorf("%w: lot_number requerido", domain.ErrInvalidInput)
	case !l.Quantity.IsPositive():
		return fmt.Errorf("%w: la cantidad del lote debe ser positiva", domain.ErrInvalidInput)
	case l.AvailableQuantity.IsNegative() || l.AvailableQuantity.GreaterThan(l.Quantity):
		return fmt.Errorf("%w: disponible fuera de rango", domain.ErrInvalidInput)
	case l.UnitCost.IsNegative():
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	case l.AvailableQuantity.IsZero() != (l.Status == LotStatusConsumed):
		return fmt.Errorf("%w: disponible en cero solo para lotes consumidos", domain.ErrInvalidInput)
	}
	return nil
}
