package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/pkg/jwt"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

// Option ajusta el caso de uso.
type Option func(*UseCase)

// WithHashCost costo de bcrypt; en pruebas se usa bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(uc *UseCase) { uc.hashCost = cost }
}

// WithClock reemplaza time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

// UseCase casos de uso de autenticación y cuentas.
// Cada operación de escritura corre en una unidad de trabajo para que negocio, usuario y
// membresía se creen juntos o no se creen.
type UseCase struct {
	txRunner ports.TxRunner
	tokens   *jwt.Signer
	log      *logger.Logger
	hashCost int
	now      func() time.Time
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(txRunner ports.TxRunner, tokens *jwt.Signer, log *logger.Logger, opts ...Option) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	uc := &UseCase{
		txRunner: txRunner,
		tokens:   tokens,
		log:      log,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RegisterBusiness crea el negocio, su usuario administrador y devuelve una sesión en ese negocio.
// ErrDuplicate si el email ya tiene cuenta.
func (uc *UseCase) RegisterBusiness(ctx context.Context, in dto.RegisterBusinessRequest) (*dto.LoginResponse, error) {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Email = normalizeEmail(in.Email)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	email := in.Email
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	business := &entity.Business{
		ID:        uuid.New().String(),
		Name:      in.BusinessName,
		TaxID:     strings.TrimSpace(in.TaxID),
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Status:    entity.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         displayName(in.Name, email),
		Status:       entity.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var memberships []*entity.Membership
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		existing, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: el email %s ya tiene cuenta", domain.ErrDuplicate, email)
		}
		if err := r.Businesses.Create(ctx, business); err != nil {
			return err
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		if err := r.Users.AddMembership(ctx, &entity.Membership{
			UserID: user.ID, BusinessID: business.ID, Role: entity.RoleAdmin, CreatedAt: now,
		}); err != nil {
			return err
		}
		memberships, err = r.Users.ListMemberships(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", business.ID).Str("user_id", user.ID).Msg("negocio registrado")
	return uc.session(user, memberships, business.ID, entity.RoleAdmin)
}

// AddUser vincula un usuario al negocio con el rol indicado. Crea la cuenta si el email no existe.
func (uc *UseCase) AddUser(ctx context.Context, businessID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	in.Email = normalizeEmail(in.Email)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	email := in.Email

	var (
		user        *entity.User
		memberships []*entity.Membership
	)
	now := uc.now().UTC()
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		b, err := r.Businesses.GetByID(ctx, businessID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: negocio %s", domain.ErrNotFound, businessID)
		}
		user, err = r.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user == nil {
			if in.Password == "" {
				return fmt.Errorf("%w: password es obligatorio para una cuenta nueva", domain.ErrInvalidInput)
			}
			hash, err := uc.hash(in.Password)
			if err != nil {
				return err
			}
			user = &entity.User{
				ID:           uuid.New().String(),
				Email:        email,
				PasswordHash: hash,
				Name:         displayName(in.Name, email),
				Status:       entity.StatusActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := r.Users.Create(ctx, user); err != nil {
				return err
			}
		}
		if err := r.Users.AddMembership(ctx, &entity.Membership{
			UserID: user.ID, BusinessID: businessID, Role: in.Role, CreatedAt: now,
		}); err != nil {
			return err
		}
		memberships, err = r.Users.ListMemberships(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", businessID).Str("user_id", user.ID).Str("role", in.Role).Msg("usuario agregado al negocio")
	resp := toUserResponse(user, memberships)
	return &resp, nil
}

// Login verifica email/password y emite un token para uno de los negocios del usuario.
// Sin business_id se usa la membresía más antigua.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	in.Email = normalizeEmail(in.Email)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	user, memberships, err := uc.loadUser(ctx, func(r ports.Repos) (*entity.User, error) {
		return r.Users.GetByEmail(ctx, in.Email)
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("user_id", user.ID).Msg("login fallido")
		return nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	return uc.open(user, memberships, in.BusinessID)
}

// SwitchBusiness emite un token nuevo para otro negocio del mismo usuario.
func (uc *UseCase) SwitchBusiness(ctx context.Context, userID, businessID string) (*dto.LoginResponse, error) {
	if err := dto.Validate(dto.SwitchBusinessRequest{BusinessID: strings.TrimSpace(businessID)}); err != nil {
		return nil, err
	}
	user, memberships, err := uc.loadUser(ctx, func(r ports.Repos) (*entity.User, error) {
		return r.Users.GetByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrUnauthorized, userID)
	}
	return uc.open(user, memberships, businessID)
}

// CreateBusiness da de alta un negocio adicional para un usuario existente, que queda como
// administrador. Devuelve una sesión en el negocio nuevo.
func (uc *UseCase) CreateBusiness(ctx context.Context, userID string, in dto.CreateBusinessRequest) (*dto.LoginResponse, error) {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	var (
		user        *entity.User
		business    *entity.Business
		memberships []*entity.Membership
	)
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		user, err = r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrUnauthorized, userID)
		}
		if user.Status != entity.StatusActive {
			return fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
		}
		business = &entity.Business{
			ID:        uuid.New().String(),
			Name:      in.BusinessName,
			TaxID:     strings.TrimSpace(in.TaxID),
			Email:     user.Email,
			Phone:     strings.TrimSpace(in.Phone),
			Status:    entity.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.Businesses.Create(ctx, business); err != nil {
			return err
		}
		if err := r.Users.AddMembership(ctx, &entity.Membership{
			UserID: user.ID, BusinessID: business.ID, Role: entity.RoleAdmin, CreatedAt: now,
		}); err != nil {
			return err
		}
		memberships, err = r.Users.ListMemberships(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", business.ID).Str("user_id", user.ID).Msg("negocio adicional creado")
	return uc.session(user, memberships, business.ID, entity.RoleAdmin)
}

// Me datos del usuario autenticado con sus negocios.
func (uc *UseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, memberships, err := uc.loadUser(ctx, func(r ports.Repos) (*entity.User, error) {
		return r.Users.GetByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
	}
	resp := toUserResponse(user, memberships)
	return &resp, nil
}

func (uc *UseCase) loadUser(ctx context.Context, find func(r ports.Repos) (*entity.User, error)) (user *entity.User, memberships []*entity.Membership, err error) {
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		user, err = find(r)
		if err != nil || user == nil {
			return err
		}
		memberships, err = r.Users.ListMemberships(ctx, user.ID)
		return err
	})
	return user, memberships, err
}

// open elige el negocio de la sesión entre las membresías del usuario.
func (uc *UseCase) open(user *entity.User, memberships []*entity.Membership, businessID string) (*dto.LoginResponse, error) {
	if user.Status != entity.StatusActive {
		return nil, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	if len(memberships) == 0 {
		return nil, fmt.Errorf("%w: el usuario no pertenece a ningún negocio", domain.ErrForbidden)
	}
	chosen := memberships[0]
	if businessID != "" {
		chosen = nil
		for _, m := range memberships {
			if m.BusinessID == businessID {
				chosen = m
				break
			}
		}
		if chosen == nil {
			return nil, fmt.Errorf("%w: el usuario no pertenece al negocio %s", domain.ErrForbidden, businessID)
		}
	}
	return uc.session(user, memberships, chosen.BusinessID, chosen.Role)
}

func (uc *UseCase) session(user *entity.User, memberships []*entity.Membership, businessID, role string) (*dto.LoginResponse, error) {
	token, err := uc.tokens.Sign(jwt.Session{UserID: user.ID, BusinessID: businessID, Role: role})
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	return &dto.LoginResponse{
		Token:      token,
		BusinessID: businessID,
		Role:       role,
		User:       toUserResponse(user, memberships),
	}, nil
}

func (uc *UseCase) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: contraseña demasiado larga", domain.ErrInvalidInput)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// normalizeEmail el formato lo valida la etiqueta email del request.
func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return email
}

func toUserResponse(u *entity.User, memberships []*entity.Membership) dto.UserResponse {
	resp := dto.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Status:     u.Status,
		Businesses: make([]dto.MembershipResponse, 0, len(memberships)),
		CreatedAt:  u.CreatedAt,
	}
	for _, m := range memberships {
		resp.Businesses = append(resp.Businesses, dto.MembershipResponse{
			BusinessID:   m.BusinessID,
			BusinessName: m.BusinessName,
			Role:         m.Role,
		})
	}
	return resp
}
