package entity

import "time"

// Supplier representa un proveedor del negocio.
type Supplier struct {
	ID          string
	BusinessID  string
	Name        string
	ContactName string
	TaxID       string
	Email       string
	Phone       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
