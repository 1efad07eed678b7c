package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
)

// SupplierUseCase directorio de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create crea un nuevo proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, businessID string, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:          uuid.New().String(),
		BusinessID:  businessID,
		Name:        in.Name,
		ContactName: in.ContactName,
		TaxID:       in.TaxID,
		Email:       in.Email,
		Phone:       in.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// GetByID obtiene un proveedor del negocio.
func (uc *SupplierUseCase) GetByID(ctx context.Context, businessID, id string) (*dto.SupplierResponse, error) {
	s, err := uc.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Update reemplaza los datos del proveedor. Las compras guardan el nombre que tenían al crearse.
func (uc *SupplierUseCase) Update(ctx context.Context, businessID, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	s, err := uc.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	s.Name = in.Name
	s.ContactName = in.ContactName
	s.TaxID = in.TaxID
	s.Email = in.Email
	s.Phone = in.Phone
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Delete elimina un proveedor sin compras; con compras es domain.ErrConflict.
func (uc *SupplierUseCase) Delete(ctx context.Context, businessID, id string) error {
	if _, err := uc.load(ctx, businessID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// List lista proveedores del negocio.
func (uc *SupplierUseCase) List(ctx context.Context, businessID string, page dto.PageRequest) (*dto.SupplierListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.ListByBusiness(ctx, businessID, repository.ListParams{Page: page.Page, Limit: page.Limit})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, Limit: page.Limit, Total: total},
	}, nil
}

func (uc *SupplierUseCase) load(ctx context.Context, businessID, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	if s.BusinessID != businessID {
		return nil, domain.ErrForbidden
	}
	return s, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:          s.ID,
		BusinessID:  s.BusinessID,
		Name:        s.Name,
		ContactName: s.ContactName,
		TaxID:       s.TaxID,
		Email:       s.Email,
		Phone:       s.Phone,
		CreatedAt:   s.CreatedAt,
	}
}

// CustomerUseCase directorio de clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un nuevo cliente.
func (uc *CustomerUseCase) Create(ctx context.Context, businessID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Customer{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       in.Name,
		TaxID:      in.TaxID,
		Email:      in.Email,
		Phone:      in.Phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// GetByID obtiene un cliente del negocio.
func (uc *CustomerUseCase) GetByID(ctx context.Context, businessID, id string) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Update reemplaza los datos del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, businessID, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.TaxID = in.TaxID
	c.Email = in.Email
	c.Phone = in.Phone
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Delete elimina un cliente sin ventas.
func (uc *CustomerUseCase) Delete(ctx context.Context, businessID, id string) error {
	if _, err := uc.load(ctx, businessID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// List lista clientes del negocio.
func (uc *CustomerUseCase) List(ctx context.Context, businessID string, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.ListByBusiness(ctx, businessID, repository.ListParams{Page: page.Page, Limit: page.Limit})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, Limit: page.Limit, Total: total},
	}, nil
}

func (uc *CustomerUseCase) load(ctx context.Context, businessID, id string) (*entity.Customer, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	if c.BusinessID != businessID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:         c.ID,
		BusinessID: c.BusinessID,
		Name:       c.Name,
		TaxID:      c.TaxID,
		Email:      c.Email,
		Phone:      c.Phone,
		CreatedAt:  c.CreatedAt,
	}
}
