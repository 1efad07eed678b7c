package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. Cost y Stock los mantiene el motor de inventario.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner ports.TxRunner
	engine   *inventory.Engine
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, txRunner ports.TxRunner, engine *inventory.Engine) *ProductUseCase {
	return &ProductUseCase{repo: repo, txRunner: txRunner, engine: engine}
}

// Create crea un nuevo producto activo. Cost y Stock inician en 0.
func (uc *ProductUseCase) Create(ctx context.Context, businessID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByBusinessAndSKU(ctx, businessID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, in.SKU)
	}
	now := uc.engine.Now()
	product := &entity.Product{
		ID:          uc.engine.NewID(),
		BusinessID:  businessID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Cost:        decimal.Zero,
		Stock:       decimal.Zero,
		MinStock:    in.MinStock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto del negocio.
func (uc *ProductUseCase) GetByID(ctx context.Context, businessID, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetBySKU busca un producto del negocio por SKU exacto (sin distinguir mayúsculas).
func (uc *ProductUseCase) GetBySKU(ctx context.Context, businessID, sku string) (*dto.ProductResponse, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, fmt.Errorf("%w: sku es obligatorio", domain.ErrInvalidInput)
	}
	product, err := uc.repo.GetByBusinessAndSKU(ctx, businessID, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: SKU %s", domain.ErrNotFound, sku)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost ni Stock.
func (uc *ProductUseCase) Update(ctx context.Context, businessID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		in.SKU = &sku
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	product, err := uc.load(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil && !strings.EqualFold(*in.SKU, product.SKU) {
		other, err := uc.repo.GetByBusinessAndSKU(ctx, businessID, *in.SKU)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != product.ID {
			return nil, fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, *in.SKU)
		}
		product.SKU = *in.SKU
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = uc.engine.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete borra el producto si nunca tuvo lotes, movimientos ni líneas de compra o venta.
// Con historial lo marca inactivo: el kardex sigue apuntando a él.
func (uc *ProductUseCase) Delete(ctx context.Context, businessID, id string) (*dto.DeleteProductResponse, error) {
	var out dto.DeleteProductResponse
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		product, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if product.BusinessID != businessID {
			return domain.ErrForbidden
		}
		referenced, err := r.Products.IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if !referenced {
			out.Deleted = true
			return r.Products.Delete(ctx, id)
		}
		product.Active = false
		product.UpdatedAt = uc.engine.Now()
		if err := r.Products.Update(ctx, product); err != nil {
			return err
		}
		out.Product = toProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List lista productos del negocio con paginación. Los inactivos solo con IncludeInactive.
func (uc *ProductUseCase) List(ctx context.Context, businessID string, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		ListParams: repository.ListParams{
			Page:           q.Page,
			Limit:          q.Limit,
			OrderBy:        q.OrderBy,
			OrderDirection: q.OrderDirection,
		},
		BusinessID:      businessID,
		Search:          strings.TrimSpace(q.Search),
		IncludeInactive: q.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, Limit: q.Limit, Total: total},
	}, nil
}

// Stock vista de stock (cache o cálculo fresco).
func (uc *ProductUseCase) Stock(ctx context.Context, businessID, id string) (*dto.StockResponse, error) {
	if _, err := uc.load(ctx, businessID, id); err != nil {
		return nil, err
	}
	snap, err := uc.engine.ProductStock(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.StockFromSnapshot(snap)
	return &out, nil
}

// Availability disponibilidad con los lotes activos con saldo.
func (uc *ProductUseCase) Availability(ctx context.Context, businessID, id string) (*dto.AvailabilityResponse, error) {
	if _, err := uc.load(ctx, businessID, id); err != nil {
		return nil, err
	}
	av, err := uc.engine.CheckAvailableStock(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{
		ProductID: av.ProductID,
		Available: av.Available,
		Lots:      dto.LotsFromEntities(av.Lots),
	}, nil
}

// Lots todos los lotes del producto.
func (uc *ProductUseCase) Lots(ctx context.Context, businessID, id string) ([]dto.LotResponse, error) {
	if _, err := uc.load(ctx, businessID, id); err != nil {
		return nil, err
	}
	lots, err := uc.engine.LotsByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.LotsFromEntities(lots), nil
}

// Movements kardex del producto.
func (uc *ProductUseCase) Movements(ctx context.Context, businessID, id string) ([]dto.MovementResponse, error) {
	if _, err := uc.load(ctx, businessID, id); err != nil {
		return nil, err
	}
	movs, err := uc.engine.MovementsByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovementFromEntity(m))
	}
	return out, nil
}

// RecordMovement anota un ajuste o traslado en el kardex del producto.
func (uc *ProductUseCase) RecordMovement(ctx context.Context, businessID, userID string, in dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if _, err := uc.load(ctx, businessID, in.ProductID); err != nil {
		return nil, err
	}
	t := entity.MovementType(in.Type)
	m, err := uc.engine.RecordMovement(ctx, &entity.StockMovement{
		Type:        t,
		ProductID:   in.ProductID,
		LotNumber:   in.LotNumber,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Reference:   in.Reference,
		PerformedBy: userID,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}
	out := dto.MovementFromEntity(m)
	return &out, nil
}

func (uc *ProductUseCase) load(ctx context.Context, businessID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	if product.BusinessID != businessID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		BusinessID:  p.BusinessID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
