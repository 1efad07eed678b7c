package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/shopspring/decimal"
)

// SaleStatus estado de una venta.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCanceled  SaleStatus = "CANCELED"
)

// IsValid indica si el estado es conocido.
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusPending || s == SaleStatusCompleted || s == SaleStatusCanceled
}

// CanTransitionTo solo PENDING admite transiciones (a COMPLETED o CANCELED).
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	return s == SaleStatusPending && (target == SaleStatusCompleted || target == SaleStatusCanceled)
}

// Sale cabecera de una venta.
type Sale struct {
	ID           string
	BusinessID   string
	CustomerID   string
	CustomerName string
	TotalAmount  decimal.Decimal
	Status       SaleStatus
	Details      []SaleDetail
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaleDetail línea de una venta.
type SaleDetail struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	TotalAmount decimal.Decimal
}

// RecalculateTotals recalcula totales de línea y de la venta.
func (s *Sale) RecalculateTotals() {
	total := decimal.Zero
	for i := range s.Details {
		s.Details[i].TotalAmount = s.Details[i].Quantity.Mul(s.Details[i].Price).Round(AmountScale)
		total = total.Add(s.Details[i].TotalAmount)
	}
	s.TotalAmount = total
}

// TransitionTo aplica la transición si está permitida.
func (s *Sale) TransitionTo(target SaleStatus, now time.Time) error {
	if !s.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: venta %s de %s a %s", domain.ErrInvalidTransition, s.ID, s.Status, target)
	}
	s.Status = target
	s.UpdatedAt = now
	return nil
}

// Clone copia profunda de la venta.
func (s *Sale) Clone() *Sale {
	cp := *s
	cp.Details = append([]SaleDetail(nil), s.Details...)
	return &cp
}
