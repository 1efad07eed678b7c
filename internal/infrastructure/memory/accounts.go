package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

type businessRepo struct {
	st *state
}

func (r *businessRepo) Create(_ context.Context, b *entity.Business) error {
	if _, ok := r.st.businesses[b.ID]; ok {
		return fmt.Errorf("%w: negocio %s", domain.ErrDuplicate, b.ID)
	}
	r.st.businesses[b.ID] = *b
	return nil
}

func (r *businessRepo) GetByID(_ context.Context, id string) (*entity.Business, error) {
	b, ok := r.st.businesses[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

type userRepo struct {
	st *state
}

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.st.users[u.ID]; ok {
		return fmt.Errorf("%w: usuario %s", domain.ErrDuplicate, u.ID)
	}
	for _, other := range r.st.users {
		if strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("%w: email %s", domain.ErrDuplicate, u.Email)
		}
	}
	r.st.users[u.ID] = *u
	r.st.order[u.ID] = r.st.next()
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) AddMembership(_ context.Context, m *entity.Membership) error {
	if _, ok := r.st.users[m.UserID]; !ok {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, m.UserID)
	}
	if _, ok := r.st.businesses[m.BusinessID]; !ok {
		return fmt.Errorf("%w: negocio %s", domain.ErrNotFound, m.BusinessID)
	}
	for _, other := range r.st.memberships {
		if other.UserID == m.UserID && other.BusinessID == m.BusinessID {
			return fmt.Errorf("%w: el usuario ya pertenece al negocio", domain.ErrDuplicate)
		}
	}
	cp := *m
	cp.BusinessName = ""
	r.st.memberships = append(r.st.memberships, cp)
	return nil
}

// ListMemberships las membresías se guardan en orden de alta.
func (r *userRepo) ListMemberships(_ context.Context, userID string) ([]*entity.Membership, error) {
	var out []*entity.Membership
	for _, m := range r.st.memberships {
		if m.UserID != userID {
			continue
		}
		m := m
		m.BusinessName = r.st.businesses[m.BusinessID].Name
		out = append(out, &m)
	}
	return out, nil
}
