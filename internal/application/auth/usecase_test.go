package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Negocio-api/internal/application/auth"
	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/memory"
	"github.com/jhoicas/Negocio-api/pkg/jwt"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

func newSigner(t *testing.T) *jwt.Signer {
	t.Helper()
	s, err := jwt.NewSigner("secreto-de-prueba", "negocio-api", 5*time.Minute)
	require.NoError(t, err)
	return s
}

func newUseCase(t *testing.T) (*auth.UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	uc := auth.NewUseCase(store, newSigner(t), logger.Nop(), auth.WithHashCost(bcrypt.MinCost))
	return uc, store
}

func register(t *testing.T, uc *auth.UseCase, business, email string) *dto.LoginResponse {
	t.Helper()
	out, err := uc.RegisterBusiness(context.Background(), dto.RegisterBusinessRequest{
		BusinessName: business,
		Name:         "Admin " + business,
		Email:        email,
		Password:     "clave-segura",
	})
	require.NoError(t, err)
	return out
}

func TestRegisterBusiness(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(t)

	out := register(t, uc, "Tienda Norte", "ana@example.com")
	assert.Equal(t, entity.RoleAdmin, out.Role)
	require.Len(t, out.User.Businesses, 1)
	assert.Equal(t, "Tienda Norte", out.User.Businesses[0].BusinessName)

	sess, err := newSigner(t).Parse(out.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.Session{UserID: out.User.ID, BusinessID: out.BusinessID, Role: entity.RoleAdmin}, sess)

	// La contraseña se guarda como hash bcrypt
	require.NoError(t, store.Run(ctx, func(r ports.Repos) error {
		u, err := r.Users.GetByID(ctx, out.User.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "clave-segura", u.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("clave-segura")))
		return nil
	}))

	_, err = uc.RegisterBusiness(ctx, dto.RegisterBusinessRequest{
		BusinessName: "Otra", Email: "ANA@example.com", Password: "clave-segura",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	tests := []struct {
		name string
		in   dto.RegisterBusinessRequest
	}{
		{"sin negocio", dto.RegisterBusinessRequest{Email: "b@example.com", Password: "clave-segura"}},
		{"email inválido", dto.RegisterBusinessRequest{BusinessName: "B", Email: "no-es-email", Password: "clave-segura"}},
		{"clave corta", dto.RegisterBusinessRequest{BusinessName: "B", Email: "b@example.com", Password: "corta"}},
		{"nombre solo espacios", dto.RegisterBusinessRequest{BusinessName: "   ", Email: "b@example.com", Password: "clave-segura"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.RegisterBusiness(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	reg := register(t, uc, "Tienda Sur", "luis@example.com")

	out, err := uc.Login(ctx, dto.LoginRequest{Email: " Luis@Example.com ", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, reg.BusinessID, out.BusinessID)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "luis@example.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@example.com", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "luis@example.com", Password: "clave-segura", BusinessID: "ajeno"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAddUserAndSwitchBusiness(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	first := register(t, uc, "Primera", "dueno@example.com")
	second := register(t, uc, "Segunda", "otra@example.com")

	// Alta de un bodeguero nuevo en el primer negocio
	u, err := uc.AddUser(ctx, first.BusinessID, dto.CreateUserRequest{
		Email: "bodega@example.com", Password: "clave-bodega", Role: entity.RoleBodeguero,
	})
	require.NoError(t, err)
	require.Len(t, u.Businesses, 1)

	// La misma persona se vincula al segundo negocio como vendedor; la clave se ignora
	u, err = uc.AddUser(ctx, second.BusinessID, dto.CreateUserRequest{
		Email: "BODEGA@example.com", Role: entity.RoleVendedor,
	})
	require.NoError(t, err)
	require.Len(t, u.Businesses, 2)

	_, err = uc.AddUser(ctx, second.BusinessID, dto.CreateUserRequest{Email: "bodega@example.com", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.AddUser(ctx, first.BusinessID, dto.CreateUserRequest{Email: "x@example.com", Password: "clave-larga", Role: "gerente"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AddUser(ctx, "no-existe", dto.CreateUserRequest{Email: "x@example.com", Password: "clave-larga", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Sin business_id entra al negocio más antiguo
	login, err := uc.Login(ctx, dto.LoginRequest{Email: "bodega@example.com", Password: "clave-bodega"})
	require.NoError(t, err)
	assert.Equal(t, first.BusinessID, login.BusinessID)
	assert.Equal(t, entity.RoleBodeguero, login.Role)

	switched, err := uc.SwitchBusiness(ctx, u.ID, second.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, switched.Role)
	sess, err := newSigner(t).Parse(switched.Token)
	require.NoError(t, err)
	assert.Equal(t, second.BusinessID, sess.BusinessID)
	assert.Equal(t, entity.RoleVendedor, sess.Role)

	_, err = uc.SwitchBusiness(ctx, first.User.ID, second.BusinessID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.SwitchBusiness(ctx, u.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	me, err := uc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bodega@example.com", me.Email)
	assert.Len(t, me.Businesses, 2)

	_, err = uc.Me(ctx, "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBusiness(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	first := register(t, uc, "Casa Matriz", "sofia@example.com")

	out, err := uc.CreateBusiness(ctx, first.User.ID, dto.CreateBusinessRequest{BusinessName: " Sucursal Norte ", TaxID: "900-1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.BusinessID, out.BusinessID)
	assert.Equal(t, entity.RoleAdmin, out.Role)
	require.Len(t, out.User.Businesses, 2)

	sess, err := newSigner(t).Parse(out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.BusinessID, sess.BusinessID)
	assert.Equal(t, first.User.ID, sess.UserID)

	// Login sin business_id sigue entrando al negocio más antiguo
	login, err := uc.Login(ctx, dto.LoginRequest{Email: "sofia@example.com", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, first.BusinessID, login.BusinessID)

	switched, err := uc.SwitchBusiness(ctx, first.User.ID, out.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, switched.Role)

	_, err = uc.CreateBusiness(ctx, first.User.ID, dto.CreateBusinessRequest{BusinessName: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateBusiness(ctx, "fantasma", dto.CreateBusinessRequest{BusinessName: "X"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
