package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LotAllocation cantidad tomada de un lote en un consumo.
type LotAllocation struct {
	LotID     string          `json:"lot_id"`
	LotNumber string          `json:"lot_number"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ConsumeResult resultado de ConsumeStock. Shortage > 0 indica sobreventa: se informa, no se rechaza.
type ConsumeResult struct {
	ProductID    string
	Reference    string
	Requested    decimal.Decimal
	ConsumedLots []*entity.InventoryLot
	Allocations  []LotAllocation
	Shortage     decimal.Decimal
	Stock        ports.StockSnapshot
}

// Consumed cantidad efectivamente descontada de los lotes.
func (c *ConsumeResult) Consumed() decimal.Decimal {
	return c.Requested.Sub(c.Shortage)
}

// Availability disponibilidad actual de un producto.
type Availability struct {
	ProductID string
	Available decimal.Decimal
	Lots      []*entity.InventoryLot
}

// ConsumeStock consume FIFO en su propia unidad de trabajo. Cache y métricas se actualizan tras el commit.
func (e *Engine) ConsumeStock(ctx context.Context, productID string, qty decimal.Decimal, reference, performedBy string) (*ConsumeResult, error) {
	var res *ConsumeResult
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		res, err = e.ConsumeStockInTx(ctx, r, productID, qty, reference, performedBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.PublishSnapshots(ctx, res.Stock)
	e.RecordConsumption(res)
	return res, nil
}

// RecordConsumption informa a métricas y al log los consumos de una transacción ya confirmada.
func (e *Engine) RecordConsumption(results ...*ConsumeResult) {
	for _, res := range results {
		e.metrics.StockConsumed(res.Consumed())
		if !res.Shortage.IsPositive() {
			continue
		}
		e.metrics.ShortageReported(res.Shortage)
		e.log.Warn().
			Str("product_id", res.ProductID).
			Str("reference", res.Reference).
			Str("requested", res.Requested.String()).
			Str("shortage", res.Shortage.String()).
			Msg("stock insuficiente en lotes")
	}
}

// ConsumeStockInTx bloquea los lotes activos del producto, los consume por fecha de entrada
// ascendente y registra un SALE_OUT por lote tocado. Luego reagrega el stock del producto.
// No registra métricas: el caller llama a RecordConsumption después del commit.
func (e *Engine) ConsumeStockInTx(ctx context.Context, r ports.Repos, productID string, qty decimal.Decimal, reference, performedBy string) (*ConsumeResult, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad a consumir debe ser positiva", domain.ErrInvalidInput)
	}
	if performedBy == "" {
		performedBy = SystemUser
	}
	product, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}

	lots, err := r.Lots.ListActiveByProductForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	allocations, shortage := inventory.ConsumeFIFO(lots, qty, now)

	res := &ConsumeResult{ProductID: productID, Reference: reference, Requested: qty, Shortage: shortage}
	for _, a := range allocations {
		if err := r.Lots.Update(ctx, a.Lot); err != nil {
			return nil, err
		}
		cost := a.Lot.UnitCost
		mov := &entity.StockMovement{
			ID:          e.newID(),
			Type:        entity.MovementSaleOut,
			ProductID:   productID,
			LotNumber:   a.Lot.LotNumber,
			Quantity:    a.Quantity,
			UnitCost:    &cost,
			Reference:   reference,
			PerformedBy: performedBy,
			Timestamp:   now,
			Notes:       fmt.Sprintf("Salida por venta %s", reference),
		}
		if err := r.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}
		res.ConsumedLots = append(res.ConsumedLots, a.Lot)
		res.Allocations = append(res.Allocations, LotAllocation{
			LotID:     a.Lot.ID,
			LotNumber: a.Lot.LotNumber,
			Quantity:  a.Quantity,
			UnitCost:  cost,
		})
	}

	res.Stock, err = e.UpdateProductStockInTx(ctx, r, productID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateProductStock recalcula el stock agregado en su propia unidad de trabajo y refresca la cache.
func (e *Engine) UpdateProductStock(ctx context.Context, productID string) (ports.StockSnapshot, error) {
	var snap ports.StockSnapshot
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		snap, err = e.UpdateProductStockInTx(ctx, r, productID)
		return err
	})
	if err != nil {
		return ports.StockSnapshot{}, err
	}
	e.PublishSnapshots(ctx, snap)
	return snap, nil
}

// UpdateProductStockInTx suma el disponible de los lotes activos y lo escribe en el producto.
func (e *Engine) UpdateProductStockInTx(ctx context.Context, r ports.Repos, productID string) (ports.StockSnapshot, error) {
	product, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		return ports.StockSnapshot{}, err
	}
	if product == nil {
		return ports.StockSnapshot{}, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	lots, err := r.Lots.ListActiveByProduct(ctx, productID)
	if err != nil {
		return ports.StockSnapshot{}, err
	}
	total, count := sumAvailable(lots)
	if err := r.Products.UpdateStock(ctx, productID, total); err != nil {
		return ports.StockSnapshot{}, err
	}
	return ports.StockSnapshot{
		ProductID:     productID,
		CurrentStock:  total,
		AvailableLots: count,
		ComputedAt:    e.now(),
	}, nil
}

// UpdateProductsStockInTx reagrega varios productos en la transacción del caller.
func (e *Engine) UpdateProductsStockInTx(ctx context.Context, r ports.Repos, productIDs []string) ([]ports.StockSnapshot, error) {
	snaps := make([]ports.StockSnapshot, 0, len(productIDs))
	for _, id := range productIDs {
		s, err := e.UpdateProductStockInTx(ctx, r, id)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// CheckAvailableStock disponibilidad de solo lectura.
func (e *Engine) CheckAvailableStock(ctx context.Context, productID string) (*Availability, error) {
	var av *Availability
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
		lots, err := r.Lots.ListActiveByProduct(ctx, productID)
		if err != nil {
			return err
		}
		available := make([]*entity.InventoryLot, 0, len(lots))
		for _, l := range lots {
			if l.AvailableQuantity.IsPositive() {
				available = append(available, l)
			}
		}
		total, _ := sumAvailable(available)
		av = &Availability{ProductID: productID, Available: total, Lots: available}
		return nil
	})
	return av, err
}

// ProductStock vista de stock desde la cache; si no hay entrada (o la cache falla) la recalcula.
func (e *Engine) ProductStock(ctx context.Context, productID string) (ports.StockSnapshot, error) {
	if e.cache != nil {
		snap, err := e.cache.Get(ctx, productID)
		if err != nil {
			e.log.Warn().Err(err).Str("product_id", productID).Msg("cache de stock no disponible")
		} else if snap != nil {
			return *snap, nil
		}
	}
	return e.UpdateProductStock(ctx, productID)
}

// sumAvailable suma el disponible de los lotes activos y cuenta los que tienen saldo.
func sumAvailable(lots []*entity.InventoryLot) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, l := range lots {
		if !l.IsActive() || !l.AvailableQuantity.IsPositive() {
			continue
		}
		total = total.Add(l.AvailableQuantity)
		count++
	}
	return total, count
}
