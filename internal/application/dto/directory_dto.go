package dto

import "time"

// CreateSupplierRequest body para POST /api/suppliers.
type CreateSupplierRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	ContactName string `json:"contact_name,omitempty" validate:"max=200"`
	TaxID       string `json:"tax_id,omitempty" validate:"max=50"`
	Email       string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
}

// UpdateSupplierRequest body para PUT /api/suppliers/:id; reemplaza todos los datos.
type UpdateSupplierRequest CreateSupplierRequest

// SupplierResponse proveedor en respuestas.
type SupplierResponse struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"business_id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	TaxID string `json:"tax_id,omitempty" validate:"max=50"`
	Email string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Phone string `json:"phone,omitempty" validate:"max=50"`
}

// UpdateCustomerRequest body para PUT /api/customers/:id; reemplaza todos los datos.
type UpdateCustomerRequest CreateCustomerRequest

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	TaxID      string    `json:"tax_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
