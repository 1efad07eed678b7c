package purchase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// Order PENDING -> ORDERED.
func (uc *UseCase) Order(ctx context.Context, businessID, id string) (*dto.PurchaseResponse, error) {
	return uc.transition(ctx, businessID, id, entity.PurchaseStatusOrdered, "Compra ordenada", nil)
}

// MarkAsInTransit ORDERED -> IN_TRANSIT. Desde PENDING solo si la política lo permite.
func (uc *UseCase) MarkAsInTransit(ctx context.Context, businessID, id string) (*dto.PurchaseResponse, error) {
	return uc.transition(ctx, businessID, id, entity.PurchaseStatusInTransit, "Compra en tránsito", func(p *entity.Purchase) error {
		if p.Status == entity.PurchaseStatusPending && uc.opts.AllowShipFromPending {
			p.Status = entity.PurchaseStatusInTransit
			p.UpdatedAt = uc.engine.Now()
			return nil
		}
		return p.TransitionTo(entity.PurchaseStatusInTransit, uc.engine.Now())
	})
}

// Invoice RECEIVED -> INVOICED; el número de factura es obligatorio.
func (uc *UseCase) Invoice(ctx context.Context, businessID, id, invoiceNumber string) (*dto.PurchaseResponse, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, uc.fail(ctx, businessID, id, fmt.Errorf("%w: número de factura requerido", domain.ErrInvalidInput))
	}
	return uc.transition(ctx, businessID, id, entity.PurchaseStatusInvoiced, "Compra facturada", func(p *entity.Purchase) error {
		if err := p.TransitionTo(entity.PurchaseStatusInvoiced, uc.engine.Now()); err != nil {
			return err
		}
		p.InvoiceNumber = invoiceNumber
		return nil
	})
}

// Complete RECEIVED o INVOICED -> COMPLETED; guarda el número de factura si viene.
func (uc *UseCase) Complete(ctx context.Context, businessID, id, invoiceNumber string) (*dto.PurchaseResponse, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	return uc.transition(ctx, businessID, id, entity.PurchaseStatusCompleted, "Compra completada", func(p *entity.Purchase) error {
		if err := p.TransitionTo(entity.PurchaseStatusCompleted, uc.engine.Now()); err != nil {
			return err
		}
		if invoiceNumber != "" {
			p.InvoiceNumber = invoiceNumber
		}
		return nil
	})
}

// Cancel cualquier estado no terminal -> CANCELED. Los lotes ya creados no se revierten.
func (uc *UseCase) Cancel(ctx context.Context, businessID, id string) (*dto.PurchaseResponse, error) {
	return uc.transition(ctx, businessID, id, entity.PurchaseStatusCanceled, "Compra cancelada", nil)
}

// transition carga la compra bloqueada, aplica apply (por defecto TransitionTo(target)) y persiste.
func (uc *UseCase) transition(
	ctx context.Context,
	businessID, id string,
	target entity.PurchaseStatus,
	successMsg string,
	apply func(p *entity.Purchase) error,
) (*dto.PurchaseResponse, error) {
	if apply == nil {
		apply = func(p *entity.Purchase) error { return p.TransitionTo(target, uc.engine.Now()) }
	}
	var p *entity.Purchase
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		p, err = loadForUpdate(ctx, r, businessID, id)
		if err != nil {
			return err
		}
		if err := apply(p); err != nil {
			return err
		}
		return r.Purchases.Update(ctx, p)
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	uc.metrics.Transition("purchase", string(target))
	uc.log.Info().Str("purchase_id", id).Str("status", string(p.Status)).Msg("transición de compra")
	uc.notify(ctx, ports.NotifySuccess, businessID, id, successMsg)
	out := dto.PurchaseFromEntity(p)
	return &out, nil
}
