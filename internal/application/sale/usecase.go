package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/jhoicas/Negocio-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Options políticas de venta.
type Options struct {
	// AllowBackorder si es false cualquier faltante aborta la finalización con ErrInsufficientStock.
	AllowBackorder bool
}

// UseCase gestor de ventas: edición mientras están pendientes y consumo FIFO al completarlas.
type UseCase struct {
	txRunner  ports.TxRunner
	engine    *inventory.Engine
	customers repository.CustomerRepository
	notifier  ports.Notifier
	metrics   ports.MetricsRecorder
	log       *logger.Logger
	opts      Options
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	engine *inventory.Engine,
	customers repository.CustomerRepository,
	notifier ports.Notifier,
	metrics ports.MetricsRecorder,
	log *logger.Logger,
	opts Options,
) *UseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:  txRunner,
		engine:    engine,
		customers: customers,
		notifier:  notifier,
		metrics:   metrics,
		log:       log,
		opts:      opts,
	}
}

var sortableFields = map[string]bool{
	"customerName": true,
	"totalAmount":  true,
	"status":       true,
	"createdAt":    true,
	"updatedAt":    true,
}

// Create registra la venta en PENDING. Con status COMPLETED la completa en la misma unidad de trabajo.
func (uc *UseCase) Create(ctx context.Context, businessID, userID string, in dto.CreateSaleRequest) (*dto.SaleCompletionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, uc.fail(ctx, businessID, "", err)
	}
	status := entity.SaleStatus(in.Status)
	if status == "" {
		status = entity.SaleStatusPending
	}
	customerName, err := uc.resolveCustomer(ctx, businessID, in.CustomerID, in.CustomerName)
	if err != nil {
		return nil, uc.fail(ctx, businessID, "", err)
	}

	now := uc.engine.Now()
	s := &entity.Sale{
		ID:           uc.engine.NewID(),
		BusinessID:   businessID,
		CustomerID:   in.CustomerID,
		CustomerName: customerName,
		Status:       entity.SaleStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var done *completion
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		details, err := uc.buildDetails(ctx, r, businessID, s.ID, in.Details)
		if err != nil {
			return err
		}
		s.Details = details
		s.RecalculateTotals()
		if err := r.Sales.Create(ctx, s); err != nil {
			return err
		}
		if status != entity.SaleStatusCompleted {
			return nil
		}
		done, err = uc.completeInTx(ctx, r, s, userID)
		return err
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, s.ID, err)
	}
	uc.metrics.Transition("sale", string(entity.SaleStatusPending))
	if done != nil {
		uc.afterComplete(ctx, businessID, done)
		return done.response(), nil
	}
	uc.notify(ctx, ports.NotifySuccess, businessID, s.ID, "Venta creada")
	return &dto.SaleCompletionResponse{Sale: dto.SaleFromEntity(s), TotalShortage: decimal.Zero}, nil
}

// Update reemplaza cliente y detalles; solo ventas PENDING.
func (uc *UseCase) Update(ctx context.Context, businessID, id string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	customerName, err := uc.resolveCustomer(ctx, businessID, in.CustomerID, in.CustomerName)
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	var s *entity.Sale
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		s, err = loadForUpdate(ctx, r, businessID, id)
		if err != nil {
			return err
		}
		if s.Status != entity.SaleStatusPending {
			return fmt.Errorf("%w: la venta %s en %s no se puede editar", domain.ErrInvalidTransition, s.ID, s.Status)
		}
		details, err := uc.buildDetails(ctx, r, businessID, s.ID, in.Details)
		if err != nil {
			return err
		}
		s.CustomerID = in.CustomerID
		s.CustomerName = customerName
		s.Details = details
		s.RecalculateTotals()
		s.UpdatedAt = uc.engine.Now()
		return r.Sales.Update(ctx, s)
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	uc.notify(ctx, ports.NotifySuccess, businessID, id, "Venta actualizada")
	out := dto.SaleFromEntity(s)
	return &out, nil
}

// Get obtiene una venta del negocio.
func (uc *UseCase) Get(ctx context.Context, businessID, id string) (*dto.SaleResponse, error) {
	var s *entity.Sale
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		s, err = r.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return checkOwner(s, businessID, id)
	})
	if err != nil {
		return nil, err
	}
	out := dto.SaleFromEntity(s)
	return &out, nil
}

// List lista ventas con filtros y paginación.
func (uc *UseCase) List(ctx context.Context, businessID string, q dto.SaleListQuery) (*dto.SaleListResponse, error) {
	q.DefaultPage()
	if !sortableFields[q.OrderBy] {
		q.OrderBy = "createdAt"
	}
	status := entity.SaleStatus(q.Status)
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, q.Status)
	}
	filter := repository.SaleFilter{
		ListParams: repository.ListParams{
			Page:           q.Page,
			Limit:          q.Limit,
			OrderBy:        q.OrderBy,
			OrderDirection: q.OrderDirection,
		},
		BusinessID:   businessID,
		Status:       status,
		CustomerName: q.CustomerName,
		TotalAmount:  q.TotalAmount,
	}
	var (
		list  []*entity.Sale
		total int
	)
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		list, total, err = r.Sales.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.SaleFromEntity(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, Limit: q.Limit, Total: total},
	}, nil
}

// Cancel PENDING -> CANCELED.
func (uc *UseCase) Cancel(ctx context.Context, businessID, id string) (*dto.SaleResponse, error) {
	var s *entity.Sale
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		s, err = loadForUpdate(ctx, r, businessID, id)
		if err != nil {
			return err
		}
		if err := s.TransitionTo(entity.SaleStatusCanceled, uc.engine.Now()); err != nil {
			return err
		}
		return r.Sales.Update(ctx, s)
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	uc.metrics.Transition("sale", string(entity.SaleStatusCanceled))
	uc.notify(ctx, ports.NotifySuccess, businessID, id, "Venta cancelada")
	out := dto.SaleFromEntity(s)
	return &out, nil
}

func (uc *UseCase) buildDetails(ctx context.Context, r ports.Repos, businessID, saleID string, in []dto.SaleDetailRequest) ([]entity.SaleDetail, error) {
	details := make([]entity.SaleDetail, 0, len(in))
	for _, d := range in {
		product, err := r.Products.GetByID(ctx, d.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || product.BusinessID != businessID {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, d.ProductID)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: el producto %s está inactivo", domain.ErrConflict, product.SKU)
		}
		price := product.Price
		if d.Price != nil {
			price = *d.Price
		}
		details = append(details, entity.SaleDetail{
			ID:          uc.engine.NewID(),
			SaleID:      saleID,
			ProductID:   d.ProductID,
			ProductName: product.Name,
			Quantity:    d.Quantity,
			Price:       price,
			TotalAmount: d.Quantity.Mul(price).Round(entity.AmountScale),
		})
	}
	return details, nil
}

func (uc *UseCase) resolveCustomer(ctx context.Context, businessID, customerID, fallback string) (string, error) {
	if customerID == "" || uc.customers == nil {
		return fallback, nil
	}
	c, err := uc.customers.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
	}
	if c.BusinessID != businessID {
		return "", fmt.Errorf("%w: cliente de otro negocio", domain.ErrForbidden)
	}
	return c.Name, nil
}

func loadForUpdate(ctx context.Context, r ports.Repos, businessID, id string) (*entity.Sale, error) {
	s, err := r.Sales.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(s, businessID, id); err != nil {
		return nil, err
	}
	return s, nil
}

func checkOwner(s *entity.Sale, businessID, id string) error {
	if s == nil {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	if businessID != "" && s.BusinessID != businessID {
		return fmt.Errorf("%w: la venta pertenece a otro negocio", domain.ErrForbidden)
	}
	return nil
}

func (uc *UseCase) notify(ctx context.Context, level ports.NotificationLevel, businessID, ref, msg string) {
	uc.notifier.Notify(ctx, ports.Notification{Level: level, Message: msg, BusinessID: businessID, Reference: ref})
}

func (uc *UseCase) fail(ctx context.Context, businessID, ref string, err error) error {
	ev := uc.log.Error()
	if isClientError(err) {
		ev = uc.log.Warn()
	}
	ev.Err(err).Str("sale_id", ref).Str("business_id", businessID).Msg("operación de venta fallida")
	uc.notify(ctx, ports.NotifyError, businessID, ref, err.Error())
	return err
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrForbidden,
		domain.ErrInvalidTransition, domain.ErrInsufficientStock,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
