package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PurchaseStatus estado del ciclo de vida de una compra.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusOrdered   PurchaseStatus = "ORDERED"
	PurchaseStatusInTransit PurchaseStatus = "IN_TRANSIT"
	PurchaseStatusReceived  PurchaseStatus = "RECEIVED"
	PurchaseStatusInvoiced  PurchaseStatus = "INVOICED"
	PurchaseStatusCompleted PurchaseStatus = "COMPLETED"
	PurchaseStatusCanceled  PurchaseStatus = "CANCELED"
)

// IsValid indica si el estado es conocido.
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusOrdered, PurchaseStatusInTransit, PurchaseStatusReceived,
		PurchaseStatusInvoiced, PurchaseStatusCompleted, PurchaseStatusCanceled:
		return true
	}
	return false
}

// IsTerminal COMPLETED y CANCELED no admiten más transiciones.
func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseStatusCompleted || s == PurchaseStatusCanceled
}

// CanReceive solo se recibe mercadería desde ORDERED o IN_TRANSIT.
func (s PurchaseStatus) CanReceive() bool {
	return s == PurchaseStatusOrdered || s == PurchaseStatusInTransit
}

// CanEdit cabecera y detalles solo se modifican antes del envío.
func (s PurchaseStatus) CanEdit() bool {
	return s == PurchaseStatusPending || s == PurchaseStatusOrdered
}

// CanTransitionTo valida la máquina de estados:
//
//	PENDING -> ORDERED -> IN_TRANSIT -> RECEIVED -> INVOICED -> COMPLETED
//	ORDERED -> RECEIVED, RECEIVED -> COMPLETED
//	cualquier estado no terminal -> CANCELED
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == PurchaseStatusCanceled {
		return true
	}
	switch s {
	case PurchaseStatusPending:
		return target == PurchaseStatusOrdered
	case PurchaseStatusOrdered:
		return target == PurchaseStatusInTransit || target == PurchaseStatusReceived
	case PurchaseStatusInTransit:
		return target == PurchaseStatusReceived
	case PurchaseStatusReceived:
		return target == PurchaseStatusInvoiced || target == PurchaseStatusCompleted
	case PurchaseStatusInvoiced:
		return target == PurchaseStatusCompleted
	}
	return false
}

// QualityCheckStatus resultado del control de calidad de una línea recibida.
type QualityCheckStatus string

const (
	QualityPending           QualityCheckStatus = "PENDING"
	QualityApproved          QualityCheckStatus = "APPROVED"
	QualityRejected          QualityCheckStatus = "REJECTED"
	QualityPartiallyApproved QualityCheckStatus = "PARTIALLY_APPROVED"
)

// IsValid acepta vacío (sin control registrado).
func (q QualityCheckStatus) IsValid() bool {
	switch q {
	case "", QualityPending, QualityApproved, QualityRejected, QualityPartiallyApproved:
		return true
	}
	return false
}

// Purchase cabecera de una compra a proveedor.
type Purchase struct {
	ID                 string
	BusinessID         string
	SupplierID         string
	SupplierName       string
	TotalAmount        decimal.Decimal // siempre igual a la suma de los totales de detalle
	Status             PurchaseStatus
	Details            []PurchaseDetail
	ActualDeliveryDate *time.Time
	ReceivedBy         string
	InvoiceNumber      string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PurchaseDetail línea de una compra.
type PurchaseDetail struct {
	ID                string
	PurchaseID        string
	ProductID         string
	ProductName       string
	Quantity          decimal.Decimal  // cantidad ordenada
	QuantityReceived  *decimal.Decimal // puede diferir de la ordenada
	Price             decimal.Decimal
	TotalAmount       decimal.Decimal // Quantity * Price
	LotNumber         string
	EntryDate         *time.Time
	ExpirationDate    *time.Time
	QualityCheck      QualityCheckStatus
	QualityNotes      string
	WarehouseLocation string
}

// ReceivableQuantity cantidad que entra a inventario: la recibida si está registrada, si no la ordenada.
// Una línea rechazada en control de calidad no ingresa.
func (d *PurchaseDetail) ReceivableQuantity() decimal.Decimal {
	if d.QualityCheck == QualityRejected {
		return decimal.Zero
	}
	if d.QuantityReceived != nil {
		return *d.QuantityReceived
	}
	return d.Quantity
}

// Backordered faltante de la recepción frente a lo ordenado (0 si llegó completo o de más).
func (d *PurchaseDetail) Backordered() decimal.Decimal {
	if d.QuantityReceived == nil {
		return decimal.Zero
	}
	missing := d.Quantity.Sub(*d.QuantityReceived)
	if missing.IsNegative() {
		return decimal.Zero
	}
	return missing
}

// RecalculateTotals recalcula el total de cada línea y el de la compra.
func (p *Purchase) RecalculateTotals() {
	total := decimal.Zero
	for i := range p.Details {
		p.Details[i].TotalAmount = p.Details[i].Quantity.Mul(p.Details[i].Price).Round(AmountScale)
		total = total.Add(p.Details[i].TotalAmount)
	}
	p.TotalAmount = total
}

// TransitionTo aplica la transición si la máquina de estados la permite.
func (p *Purchase) TransitionTo(target PurchaseStatus, now time.Time) error {
	if !p.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: compra %s de %s a %s", domain.ErrInvalidTransition, p.ID, p.Status, target)
	}
	p.Status = target
	p.UpdatedAt = now
	return nil
}

// LineFor índice de la línea a la que apunta una recepción. detailID manda; sin él el
// producto solo identifica la línea si aparece una única vez en la compra.
func (p *Purchase) LineFor(detailID, productID string) (int, error) {
	if detailID != "" {
		for i := range p.Details {
			if p.Details[i].ID != detailID {
				continue
			}
			if productID != "" && p.Details[i].ProductID != productID {
				return -1, fmt.Errorf("%w: la línea %s no es del producto %s", domain.ErrInvalidInput, detailID, productID)
			}
			return i, nil
		}
		return -1, fmt.Errorf("%w: la línea %s no pertenece a la compra", domain.ErrInvalidInput, detailID)
	}
	found := -1
	for i := range p.Details {
		if p.Details[i].ProductID != productID {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("%w: el producto %s tiene varias líneas, indique detail_id", domain.ErrInvalidInput, productID)
		}
		found = i
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: el producto %s no pertenece a la compra", domain.ErrInvalidInput, productID)
	}
	return found, nil
}

// Clone copia profunda (detalles y punteros) para trabajar sin alias.
func (p *Purchase) Clone() *Purchase {
	cp := *p
	cp.Details = make([]PurchaseDetail, len(p.Details))
	for i, d := range p.Details {
		if d.QuantityReceived != nil {
			q := *d.QuantityReceived
			d.QuantityReceived = &q
		}
		d.EntryDate = cloneTime(d.EntryDate)
		d.ExpirationDate = cloneTime(d.ExpirationDate)
		cp.Details[i] = d
	}
	cp.ActualDeliveryDate = cloneTime(p.ActualDeliveryDate)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
