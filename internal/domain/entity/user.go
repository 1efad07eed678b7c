package entity

import "time"

// Roles válidos dentro de un negocio.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// IsValidRole indica si el rol es uno de los admitidos.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleBodeguero || role == RoleVendedor
}

// User representa una cuenta de acceso. Un usuario puede pertenecer a varios negocios,
// con un rol distinto en cada uno (ver Membership).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt, nunca la contraseña en claro
	Name         string
	Status       string // active, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Membership vínculo usuario-negocio con el rol que el usuario tiene en ese negocio.
type Membership struct {
	UserID       string
	BusinessID   string
	BusinessName string // solo lectura, resuelto al listar
	Role         string
	CreatedAt    time.Time
}
