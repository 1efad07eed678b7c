package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/memory"
)

func TestAccounts_UsersAndMemberships(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	err := store.Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Businesses.Create(ctx, &entity.Business{ID: "b1", Name: "Uno", CreatedAt: base}))
		require.NoError(t, r.Businesses.Create(ctx, &entity.Business{ID: "b2", Name: "Dos", CreatedAt: base}))
		require.NoError(t, r.Users.Create(ctx, &entity.User{ID: "u1", Email: "Eva@Example.com", Status: entity.StatusActive}))

		assert.ErrorIs(t, r.Users.Create(ctx, &entity.User{ID: "u2", Email: "eva@example.com"}), domain.ErrDuplicate)

		u, err := r.Users.GetByEmail(ctx, "EVA@example.COM")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "u1", u.ID)

		require.NoError(t, r.Users.AddMembership(ctx, &entity.Membership{UserID: "u1", BusinessID: "b2", Role: entity.RoleVendedor}))
		require.NoError(t, r.Users.AddMembership(ctx, &entity.Membership{UserID: "u1", BusinessID: "b1", Role: entity.RoleAdmin}))
		assert.ErrorIs(t, r.Users.AddMembership(ctx, &entity.Membership{UserID: "u1", BusinessID: "b1", Role: entity.RoleVendedor}), domain.ErrDuplicate)
		assert.ErrorIs(t, r.Users.AddMembership(ctx, &entity.Membership{UserID: "u1", BusinessID: "b9", Role: entity.RoleAdmin}), domain.ErrNotFound)

		ms, err := r.Users.ListMemberships(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, ms, 2)
		// orden de alta, con el nombre del negocio resuelto
		assert.Equal(t, "Dos", ms[0].BusinessName)
		assert.Equal(t, "Uno", ms[1].BusinessName)
		return nil
	})
	require.NoError(t, err)

	// Un fallo en la unidad de trabajo no deja usuarios a medias
	err = store.Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Users.Create(ctx, &entity.User{ID: "u3", Email: "tmp@example.com"}))
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, store.Run(ctx, func(r ports.Repos) error {
		u, err := r.Users.GetByID(ctx, "u3")
		assert.Nil(t, u)
		return err
	}))
}
