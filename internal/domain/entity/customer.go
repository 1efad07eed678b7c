package entity

import "time"

// Customer representa un cliente del negocio. Para el núcleo solo aporta el nombre a mostrar en ventas.
type Customer struct {
	ID         string
	BusinessID string
	Name       string
	TaxID      string
	Email      string
	Phone      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
