package purchase

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

// Options políticas configurables del ciclo de vida.
type Options struct {
	// AllowShipFromPending permite marcar en tránsito una compra que nunca se ordenó.
	AllowShipFromPending bool
}

// UseCase gestor del ciclo de vida de compras. La recepción orquesta el motor de inventario
// dentro de una sola unidad de trabajo.
type UseCase struct {
	txRunner  ports.TxRunner
	engine    *inventory.Engine
	suppliers repository.SupplierRepository
	notifier  ports.Notifier
	metrics   ports.MetricsRecorder
	log       *logger.Logger
	opts      Options
}

// NewUseCase construye el caso de uso. notifier y metrics pueden ser nil.
func NewUseCase(
	txRunner ports.TxRunner,
	engine *inventory.Engine,
	suppliers repository.SupplierRepository,
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
		suppliers: suppliers,
		notifier:  notifier,
		metrics:   metrics,
		log:       log,
		opts:      opts,
	}
}

var sortableFields = map[string]bool{
	"supplierName": true,
	"totalAmount":  true,
	"status":       true,
	"createdAt":    true,
	"updatedAt":    true,
}

// Create registra una compra en PENDING (u ORDERED si se pide) con totales calculados.
func (uc *UseCase) Create(ctx context.Context, businessID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, uc.fail(ctx, businessID, "", err)
	}
	status := entity.PurchaseStatus(in.Status)
	if status == "" {
		status = entity.PurchaseStatusPending
	}
	supplierName, err := uc.resolveSupplier(ctx, businessID, in.SupplierID, in.SupplierName)
	if err != nil {
		return nil, uc.fail(ctx, businessID, "", err)
	}

	now := uc.engine.Now()
	p := &entity.Purchase{
		ID:           uc.engine.NewID(),
		BusinessID:   businessID,
		SupplierID:   in.SupplierID,
		SupplierName: supplierName,
		Status:       status,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		details, err := uc.buildDetails(ctx, r, businessID, p.ID, in.Details)
		if err != nil {
			return err
		}
		p.Details = details
		p.RecalculateTotals()
		return r.Purchases.Create(ctx, p)
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, p.ID, err)
	}
	uc.metrics.Transition("purchase", string(p.Status))
	uc.notify(ctx, ports.NotifySuccess, businessID, p.ID, "Compra creada")
	out := dto.PurchaseFromEntity(p)
	return &out, nil
}

// Update reemplaza cabecera y detalles; solo en PENDING u ORDERED.
func (uc *UseCase) Update(ctx context.Context, businessID, id string, in dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	supplierName, err := uc.resolveSupplier(ctx, businessID, in.SupplierID, in.SupplierName)
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	var p *entity.Purchase
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		p, err = loadForUpdate(ctx, r, businessID, id)
		if err != nil {
			return err
		}
		if !p.Status.CanEdit() {
			return fmt.Errorf("%w: la compra %s en %s no se puede editar", domain.ErrInvalidTransition, p.ID, p.Status)
		}
		details, err := uc.buildDetails(ctx, r, businessID, p.ID, in.Details)
		if err != nil {
			return err
		}
		p.SupplierID = in.SupplierID
		p.SupplierName = supplierName
		p.Notes = in.Notes
		p.Details = details
		p.RecalculateTotals()
		p.UpdatedAt = uc.engine.Now()
		return r.Purchases.Update(ctx, p)
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	uc.notify(ctx, ports.NotifySuccess, businessID, id, "Compra actualizada")
	out := dto.PurchaseFromEntity(p)
	return &out, nil
}

// Delete elimina compras PENDING o CANCELED que nunca se recibieron.
func (uc *UseCase) Delete(ctx context.Context, businessID, id string) error {
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		p, err := loadForUpdate(ctx, r, businessID, id)
		if err != nil {
			return err
		}
		deletable := p.Status == entity.PurchaseStatusPending || p.Status == entity.PurchaseStatusCanceled
		if !deletable || p.ActualDeliveryDate != nil {
			return fmt.Errorf("%w: la compra %s en %s no se puede eliminar", domain.ErrInvalidTransition, p.ID, p.Status)
		}
		return r.Purchases.Delete(ctx, id)
	})
	if err != nil {
		return uc.fail(ctx, businessID, id, err)
	}
	uc.notify(ctx, ports.NotifySuccess, businessID, id, "Compra eliminada")
	return nil
}

// Get obtiene una compra del negocio.
func (uc *UseCase) Get(ctx context.Context, businessID, id string) (*dto.PurchaseResponse, error) {
	var p *entity.Purchase
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		p, err = r.Purchases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return checkOwner(p, businessID, id)
	})
	if err != nil {
		return nil, err
	}
	out := dto.PurchaseFromEntity(p)
	return &out, nil
}

// List lista compras con filtros, orden y paginación (por defecto createdAt desc, 20 por página).
func (uc *UseCase) List(ctx context.Context, businessID string, q dto.PurchaseListQuery) (*dto.PurchaseListResponse, error) {
	q.DefaultPage()
	if q.OrderBy == "" || !sortableFields[q.OrderBy] {
		q.OrderBy = "createdAt"
	}
	status := entity.PurchaseStatus(q.Status)
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, q.Status)
	}
	filter := repository.PurchaseFilter{
		ListParams: repository.ListParams{
			Page:           q.Page,
			Limit:          q.Limit,
			OrderBy:        q.OrderBy,
			OrderDirection: q.OrderDirection,
		},
		BusinessID:   businessID,
		Status:       status,
		SupplierName: q.SupplierName,
		TotalAmount:  q.TotalAmount,
	}
	var (
		list  []*entity.Purchase
		total int
	)
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		list, total, err = r.Purchases.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.PurchaseFromEntity(p))
	}
	return &dto.PurchaseListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, Limit: q.Limit, Total: total},
	}, nil
}

func (uc *UseCase) buildDetails(ctx context.Context, r ports.Repos, businessID, purchaseID string, in []dto.PurchaseDetailRequest) ([]entity.PurchaseDetail, error) {
	details := make([]entity.PurchaseDetail, 0, len(in))
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
		details = append(details, entity.PurchaseDetail{
			ID:          uc.engine.NewID(),
			PurchaseID:  purchaseID,
			ProductID:   d.ProductID,
			ProductName: product.Name,
			Quantity:    d.Quantity,
			Price:       d.Price,
			TotalAmount: d.Quantity.Mul(d.Price).Round(entity.AmountScale),
		})
	}
	return details, nil
}

func (uc *UseCase) resolveSupplier(ctx context.Context, businessID, supplierID, fallback string) (string, error) {
	if supplierID == "" || uc.suppliers == nil {
		return fallback, nil
	}
	s, err := uc.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, supplierID)
	}
	if s.BusinessID != businessID {
		return "", fmt.Errorf("%w: proveedor de otro negocio", domain.ErrForbidden)
	}
	return s.Name, nil
}

func loadForUpdate(ctx context.Context, r ports.Repos, businessID, id string) (*entity.Purchase, error) {
	p, err := r.Purchases.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(p, businessID, id); err != nil {
		return nil, err
	}
	return p, nil
}

func checkOwner(p *entity.Purchase, businessID, id string) error {
	if p == nil {
		return fmt.Errorf("%w: compra %s", domain.ErrNotFound, id)
	}
	if businessID != "" && p.BusinessID != businessID {
		return fmt.Errorf("%w: la compra pertenece a otro negocio", domain.ErrForbidden)
	}
	return nil
}

func (uc *UseCase) notify(ctx context.Context, level ports.NotificationLevel, businessID, ref, msg string) {
	uc.notifier.Notify(ctx, ports.Notification{Level: level, Message: msg, BusinessID: businessID, Reference: ref})
}

// fail registra el error, lo reporta al canal de notificaciones y lo devuelve sin cambios.
func (uc *UseCase) fail(ctx context.Context, businessID, ref string, err error) error {
	ev := uc.log.Warn()
	if !isClientError(err) {
		ev = uc.log.Error()
	}
	ev.Err(err).Str("purchase_id", ref).Str("business_id", businessID).Msg("operación de compra fallida")
	uc.notify(ctx, ports.NotifyError, businessID, ref, err.Error())
	return err
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrForbidden,
		domain.ErrInvalidTransition, domain.ErrDuplicate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
