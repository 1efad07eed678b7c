package dto

import "time"

// RegisterBusinessRequest alta de un negocio nuevo junto con su usuario administrador.
type RegisterBusinessRequest struct {
	BusinessName string `json:"business_name" validate:"required,max=200"`
	TaxID        string `json:"tax_id" validate:"max=50"`
	Phone        string `json:"phone" validate:"max=50"`
	Name         string `json:"name" validate:"max=200"`
	Email        string `json:"email" validate:"required,email,max=200"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
}

// CreateBusinessRequest negocio adicional para el usuario autenticado.
type CreateBusinessRequest struct {
	BusinessName string `json:"business_name" validate:"required,max=200"`
	TaxID        string `json:"tax_id" validate:"max=50"`
	Phone        string `json:"phone" validate:"max=50"`
}

// CreateUserRequest un administrador agrega un usuario a su negocio.
// Si el email ya existe, la cuenta existente se vincula y Password se ignora.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
	Name     string `json:"name" validate:"max=200"`
	Role     string `json:"role" validate:"required,oneof=admin bodeguero vendedor"`
}

// LoginRequest credenciales; BusinessID elige el negocio si el usuario pertenece a varios.
type LoginRequest struct {
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
	BusinessID string `json:"business_id"`
}

// SwitchBusinessRequest cambio del negocio activo en la sesión.
type SwitchBusinessRequest struct {
	BusinessID string `json:"business_id" validate:"required"`
}

// MembershipResponse negocio al que pertenece el usuario y su rol allí.
type MembershipResponse struct {
	BusinessID   string `json:"business_id"`
	BusinessName string `json:"business_name"`
	Role         string `json:"role"`
}

// UserResponse usuario sin datos sensibles.
type UserResponse struct {
	ID         string               `json:"id"`
	Email      string               `json:"email"`
	Name       string               `json:"name"`
	Status     string               `json:"status"`
	Businesses []MembershipResponse `json:"businesses"`
	CreatedAt  time.Time            `json:"created_at"`
}

// LoginResponse token de sesión atado a un negocio y rol.
type LoginResponse struct {
	Token      string       `json:"token"`
	BusinessID string       `json:"business_id"`
	Role       string       `json:"role"`
	User       UserResponse `json:"user"`
}
