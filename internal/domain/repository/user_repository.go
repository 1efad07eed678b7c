package repository

import (
	"context"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// BusinessRepository puerto de persistencia para negocios.
type BusinessRepository interface {
	Create(ctx context.Context, b *entity.Business) error
	GetByID(ctx context.Context, id string) (*entity.Business, error)
}

// UserRepository puerto de persistencia para usuarios y sus membresías.
// GetByEmail no distingue mayúsculas; un email duplicado es domain.ErrDuplicate.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	AddMembership(ctx context.Context, m *entity.Membership) error
	// ListMemberships membresías del usuario por fecha de alta, con el nombre del negocio.
	ListMemberships(ctx context.Context, userID string) ([]*entity.Membership, error)
}
