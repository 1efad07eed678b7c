package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// Receive recibe la mercadería de una compra ORDERED o IN_TRANSIT. En una sola unidad de trabajo:
// pasa la compra a RECEIVED, crea un lote por línea recibida (con su PURCHASE_IN) y reagrega el
// stock de cada producto. Cualquier fallo revierte todo y la compra queda en su estado previo.
// Cada item apunta a una línea por detail_id, o por producto si este tiene una sola línea.
func (uc *UseCase) Receive(ctx context.Context, businessID, id, userID string, in dto.ReceivePurchaseRequest) (*dto.ReceivePurchaseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	receivedBy := in.ReceivedBy
	if receivedBy == "" {
		receivedBy = userID
	}

	var (
		p         *entity.Purchase
		lots      []*entity.InventoryLot
		created   int
		snapshots []ports.StockSnapshot
	)
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		p, err = loadForUpdate(ctx, r, businessID, id)
		if err != nil {
			return err
		}
		if !p.Status.CanReceive() {
			return fmt.Errorf("%w: la compra %s en %s no se puede recibir", domain.ErrInvalidTransition, p.ID, p.Status)
		}

		now := uc.engine.Now()
		delivery := now
		if in.ActualDeliveryDate != nil {
			delivery = *in.ActualDeliveryDate
		}
		if err := applyReceipt(p, in.Items, delivery); err != nil {
			return err
		}

		// Una especificación por línea con cantidad a ingresar; specIdx mapea de vuelta al detalle
		var (
			specs   []inventory.LotSpec
			specIdx []int
		)
		for i := range p.Details {
			d := &p.Details[i]
			qty := d.ReceivableQuantity()
			if !qty.IsPositive() {
				continue
			}
			specs = append(specs, inventory.LotSpec{
				ProductID:      d.ProductID,
				LotNumber:      d.LotNumber,
				Quantity:       qty,
				UnitCost:       d.Price,
				EntryDate:      *d.EntryDate,
				ExpirationDate: d.ExpirationDate,
				SupplierID:     p.SupplierID,
				Location:       d.WarehouseLocation,
			})
			specIdx = append(specIdx, i)
		}
		lots, created, err = uc.engine.CreateLotsFromPurchaseInTx(ctx, r, p.ID, specs, receivedBy)
		if err != nil {
			return err
		}
		for i, lot := range lots {
			p.Details[specIdx[i]].LotNumber = lot.LotNumber
		}

		if err := p.TransitionTo(entity.PurchaseStatusReceived, now); err != nil {
			return err
		}
		p.ActualDeliveryDate = &delivery
		p.ReceivedBy = receivedBy
		if in.Notes != "" {
			p.Notes = in.Notes
		}
		if err := r.Purchases.Update(ctx, p); err != nil {
			return err
		}

		snapshots, err = uc.engine.UpdateProductsStockInTx(ctx, r, detailProducts(p))
		return err
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}

	uc.engine.PublishSnapshots(ctx, snapshots...)
	uc.engine.RecordLotsCreated(created)
	uc.metrics.Transition("purchase", string(entity.PurchaseStatusReceived))

	backorders := backorderLines(p)
	uc.log.Info().
		Str("purchase_id", p.ID).
		Int("lots", len(lots)).
		Int("backorders", len(backorders)).
		Msg("compra recibida")
	uc.notify(ctx, ports.NotifySuccess, businessID, p.ID, fmt.Sprintf("Compra recibida: %d lotes creados", len(lots)))
	if len(backorders) > 0 {
		uc.notify(ctx, ports.NotifyWarning, businessID, p.ID, fmt.Sprintf("Recepción parcial: %d líneas con faltante", len(backorders)))
	}

	return &dto.ReceivePurchaseResponse{
		Purchase:   dto.PurchaseFromEntity(p),
		Lots:       dto.LotsFromEntities(lots),
		Stock:      dto.StocksFromSnapshots(snapshots),
		Backorders: backorders,
	}, nil
}

// applyReceipt vuelca los datos de recepción en los detalles. Las líneas sin item se reciben completas.
func applyReceipt(p *entity.Purchase, items []dto.ReceiveItemRequest, delivery time.Time) error {
	byLine := make(map[int]dto.ReceiveItemRequest, len(items))
	for _, item := range items {
		i, err := p.LineFor(item.DetailID, item.ProductID)
		if err != nil {
			return err
		}
		if _, dup := byLine[i]; dup {
			return fmt.Errorf("%w: la línea %s se recibe dos veces", domain.ErrInvalidInput, p.Details[i].ID)
		}
		byLine[i] = item
	}
	for i := range p.Details {
		d := &p.Details[i]
		entry := delivery
		d.EntryDate = &entry
		item, ok := byLine[i]
		if !ok {
			if d.QuantityReceived == nil {
				d.QuantityReceived = decimalPtr(d.Quantity)
			}
			continue
		}
		if item.QuantityReceived != nil {
			d.QuantityReceived = decimalPtr(*item.QuantityReceived)
		} else if d.QuantityReceived == nil {
			d.QuantityReceived = decimalPtr(d.Quantity)
		}
		if item.LotNumber != "" {
			d.LotNumber = item.LotNumber
		}
		if item.ExpirationDate != nil {
			exp := *item.ExpirationDate
			d.ExpirationDate = &exp
		}
		if item.QualityCheck != "" {
			d.QualityCheck = entity.QualityCheckStatus(item.QualityCheck)
		}
		if item.QualityNotes != "" {
			d.QualityNotes = item.QualityNotes
		}
		if item.WarehouseLocation != "" {
			d.WarehouseLocation = item.WarehouseLocation
		}
	}
	return nil
}

func detailProducts(p *entity.Purchase) []string {
	seen := make(map[string]bool, len(p.Details))
	ids := make([]string, 0, len(p.Details))
	for _, d := range p.Details {
		if seen[d.ProductID] {
			continue
		}
		seen[d.ProductID] = true
		ids = append(ids, d.ProductID)
	}
	return ids
}

func backorderLines(p *entity.Purchase) []dto.BackorderLine {
	var out []dto.BackorderLine
	for i := range p.Details {
		d := &p.Details[i]
		missing := d.Backordered()
		if !missing.IsPositive() {
			continue
		}
		out = append(out, dto.BackorderLine{
			DetailID:  d.ID,
			ProductID: d.ProductID,
			Ordered:   d.Quantity,
			Received:  *d.QuantityReceived,
			Missing:   missing,
		})
	}
	return out
}
