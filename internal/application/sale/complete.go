package sale

import (
	"context"
	"fmt"

	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// completion resultado interno de completar una venta.
type completion struct {
	sale          *entity.Sale
	lines         []*inventory.ConsumeResult
	totalShortage decimal.Decimal
}

func (c *completion) response() *dto.SaleCompletionResponse {
	lines := make([]dto.SaleLineResult, 0, len(c.lines))
	for _, l := range c.lines {
		allocs := make([]dto.AllocationResponse, 0, len(l.Allocations))
		for _, a := range l.Allocations {
			allocs = append(allocs, dto.AllocationResponse{
				LotID:     a.LotID,
				LotNumber: a.LotNumber,
				Quantity:  a.Quantity,
				UnitCost:  a.UnitCost,
			})
		}
		lines = append(lines, dto.SaleLineResult{
			ProductID:   l.ProductID,
			Requested:   l.Requested,
			Consumed:    l.Consumed(),
			Shortage:    l.Shortage,
			Allocations: allocs,
		})
	}
	return &dto.SaleCompletionResponse{
		Sale:          dto.SaleFromEntity(c.sale),
		Lines:         lines,
		TotalShortage: c.totalShortage,
	}
}

// snapshots última vista de stock por producto, en orden de aparición.
func (c *completion) snapshots() []ports.StockSnapshot {
	idx := make(map[string]int, len(c.lines))
	var out []ports.StockSnapshot
	for _, l := range c.lines {
		if i, ok := idx[l.ProductID]; ok {
			out[i] = l.Stock
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l.Stock)
	}
	return out
}

// Complete PENDING -> COMPLETED consumiendo FIFO cada línea en secuencia dentro de una unidad de
// trabajo. Los faltantes se agregan en el resultado; si la política no admite pedidos pendientes,
// cualquier faltante revierte todo y la venta sigue PENDING.
func (uc *UseCase) Complete(ctx context.Context, businessID, id, userID string) (*dto.SaleCompletionResponse, error) {
	var c *completion
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		s, err := loadForUpdate(ctx, r, businessID, id)
		if err != nil {
			return err
		}
		c, err = uc.completeInTx(ctx, r, s, userID)
		return err
	})
	if err != nil {
		return nil, uc.fail(ctx, businessID, id, err)
	}
	uc.afterComplete(ctx, businessID, c)
	return c.response(), nil
}

func (uc *UseCase) completeInTx(ctx context.Context, r ports.Repos, s *entity.Sale, userID string) (*completion, error) {
	if !s.Status.CanTransitionTo(entity.SaleStatusCompleted) {
		return nil, fmt.Errorf("%w: venta %s de %s a %s", domain.ErrInvalidTransition, s.ID, s.Status, entity.SaleStatusCompleted)
	}
	c := &completion{sale: s, totalShortage: decimal.Zero}
	for _, d := range s.Details {
		res, err := uc.engine.ConsumeStockInTx(ctx, r, d.ProductID, d.Quantity, s.ID, userID)
		if err != nil {
			return nil, err
		}
		c.lines = append(c.lines, res)
		c.totalShortage = c.totalShortage.Add(res.Shortage)
	}
	if c.totalShortage.IsPositive() && !uc.opts.AllowBackorder {
		return nil, fmt.Errorf("%w: faltan %s unidades para completar la venta %s", domain.ErrInsufficientStock, c.totalShortage, s.ID)
	}
	if err := s.TransitionTo(entity.SaleStatusCompleted, uc.engine.Now()); err != nil {
		return nil, err
	}
	if err := r.Sales.Update(ctx, s); err != nil {
		return nil, err
	}
	return c, nil
}

// afterComplete efectos posteriores al commit: cache, métricas y notificaciones.
func (uc *UseCase) afterComplete(ctx context.Context, businessID string, c *completion) {
	uc.engine.PublishSnapshots(ctx, c.snapshots()...)
	uc.engine.RecordConsumption(c.lines...)
	uc.metrics.Transition("sale", string(entity.SaleStatusCompleted))
	uc.log.Info().
		Str("sale_id", c.sale.ID).
		Str("total_shortage", c.totalShortage.String()).
		Msg("venta completada")
	if c.totalShortage.IsPositive() {
		uc.notify(ctx, ports.NotifyWarning, businessID, c.sale.ID,
			fmt.Sprintf("Venta completada con faltante de %s unidades", c.totalShortage))
		return
	}
	uc.notify(ctx, ports.NotifySuccess, businessID, c.sale.ID, "Venta completada")
}
