package entity

import "time"

// Business representa un negocio (tenant). Todo producto, compra y venta pertenece a uno.
type Business struct {
	ID        string
	Name      string
	TaxID     string // NIT o documento tributario
	Email     string
	Phone     string
	Status    string // active, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Estados de negocio y de usuario.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)
