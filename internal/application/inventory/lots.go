package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LotSpec datos para crear un lote a partir de una línea recibida.
type LotSpec struct {
	ProductID      string
	LotNumber      string // vacío: se genera
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	EntryDate      time.Time
	ExpirationDate *time.Time
	SupplierID     string
	Location       string
}

func (s LotSpec) validate() error {
	if s.ProductID == "" {
		return fmt.Errorf("%w: product_id requerido en el lote", domain.ErrInvalidInput)
	}
	if !s.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad del lote de %s debe ser positiva", domain.ErrInvalidInput, s.ProductID)
	}
	if s.UnitCost.IsNegative() {
		return fmt.Errorf("%w: costo unitario negativo para %s", domain.ErrInvalidInput, s.ProductID)
	}
	if !fitsScale(s.Quantity) || !fitsScale(s.UnitCost) {
		return fmt.Errorf("%w: cantidad y costo de %s admiten como máximo %d decimales", domain.ErrInvalidInput, s.ProductID, entity.AmountScale)
	}
	return nil
}

func fitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(entity.AmountScale))
}

type lotKey struct{ productID, lotNumber string }

// CreateLotsFromPurchase crea un lote por especificación (con su movimiento PURCHASE_IN) en una
// unidad de trabajo propia. Cache y métricas se actualizan tras el commit.
func (e *Engine) CreateLotsFromPurchase(ctx context.Context, purchaseID string, specs []LotSpec, performedBy string) ([]*entity.InventoryLot, error) {
	var (
		lots      []*entity.InventoryLot
		created   int
		snapshots []ports.StockSnapshot
	)
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		lots, created, err = e.CreateLotsFromPurchaseInTx(ctx, r, purchaseID, specs, performedBy)
		if err != nil {
			return err
		}
		snapshots, err = e.UpdateProductsStockInTx(ctx, r, productIDsOf(lots))
		return err
	})
	if err != nil {
		return nil, err
	}
	e.PublishSnapshots(ctx, snapshots...)
	e.RecordLotsCreated(created)
	return lots, nil
}

// CreateLotsFromPurchaseInTx crea los lotes dentro de la transacción del caller y devuelve
// cuántos son nuevos; el caller los informa con RecordLotsCreated después del commit.
//
// Idempotente por (producto, número de lote, compra): un lote existente de la misma compra con la
// misma cantidad y costo se devuelve sin registrar otro movimiento. Con otra cantidad o costo es
// ErrConflict, y si el número pertenece a otra compra es ErrDuplicate. Dos specs del mismo
// producto con el mismo número de lote en una llamada son ErrInvalidInput.
// También actualiza el costo promedio ponderado del producto.
func (e *Engine) CreateLotsFromPurchaseInTx(ctx context.Context, r ports.Repos, purchaseID string, specs []LotSpec, performedBy string) ([]*entity.InventoryLot, int, error) {
	for _, s := range specs {
		if err := s.validate(); err != nil {
			return nil, 0, err
		}
	}
	if performedBy == "" {
		performedBy = SystemUser
	}

	lots := make([]*entity.InventoryLot, 0, len(specs))
	seen := make(map[lotKey]bool, len(specs))
	created := 0
	for _, s := range specs {
		product, err := r.Products.GetByID(ctx, s.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if product == nil {
			return nil, 0, fmt.Errorf("%w: producto %s", domain.ErrNotFound, s.ProductID)
		}

		lotNumber := s.LotNumber
		if lotNumber == "" {
			lotNumber = e.lotNumbers.Generate(s.ProductID)
		}
		key := lotKey{s.ProductID, lotNumber}
		if seen[key] {
			return nil, 0, fmt.Errorf("%w: el lote %s del producto %s se repite en la recepción", domain.ErrInvalidInput, lotNumber, s.ProductID)
		}
		seen[key] = true

		existing, err := r.Lots.GetByProductAndNumber(ctx, s.ProductID, lotNumber)
		if err != nil {
			return nil, 0, err
		}
		if existing != nil {
			if existing.PurchaseID != purchaseID {
				return nil, 0, fmt.Errorf("%w: lote %s ya existe para el producto %s", domain.ErrDuplicate, lotNumber, s.ProductID)
			}
			if !existing.Quantity.Equal(s.Quantity) || !existing.UnitCost.Equal(s.UnitCost) {
				return nil, 0, fmt.Errorf("%w: el lote %s ya se registró con %s unidades a %s",
					domain.ErrConflict, lotNumber, existing.Quantity, existing.UnitCost)
			}
			lots = append(lots, existing)
			continue
		}

		// Costo promedio ponderado sobre el stock vigente en lotes activos
		current, err := r.Lots.ListActiveByProduct(ctx, s.ProductID)
		if err != nil {
			return nil, 0, err
		}
		stock, _ := sumAvailable(current)
		valued := inventory.Valuation{Quantity: stock, UnitCost: product.Cost}.Receive(s.Quantity, s.UnitCost)
		if err := r.Products.UpdateCost(ctx, s.ProductID, valued.UnitCost); err != nil {
			return nil, 0, err
		}

		now := e.now()
		lot := &entity.InventoryLot{
			ID:                e.newID(),
			ProductID:         s.ProductID,
			LotNumber:         lotNumber,
			Quantity:          s.Quantity,
			AvailableQuantity: s.Quantity,
			UnitCost:          s.UnitCost,
			EntryDate:         s.EntryDate,
			ExpirationDate:    s.ExpirationDate,
			SupplierID:        s.SupplierID,
			PurchaseID:        purchaseID,
			Location:          s.Location,
			Status:            entity.LotStatusActive,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if lot.EntryDate.IsZero() {
			lot.EntryDate = now
		}
		if err := lot.Validate(); err != nil {
			return nil, 0, err
		}
		if err := r.Lots.Create(ctx, lot); err != nil {
			return nil, 0, err
		}

		cost := s.UnitCost
		mov := &entity.StockMovement{
			ID:          e.newID(),
			Type:        entity.MovementPurchaseIn,
			ProductID:   s.ProductID,
			LotNumber:   lotNumber,
			Quantity:    s.Quantity,
			UnitCost:    &cost,
			Reference:   purchaseID,
			PerformedBy: performedBy,
			Timestamp:   now,
			Notes:       fmt.Sprintf("Entrada por recepción de compra %s", purchaseID),
		}
		if err := r.Movements.Create(ctx, mov); err != nil {
			return nil, 0, err
		}
		lots = append(lots, lot)
		created++
	}
	return lots, created, nil
}

// RecordLotsCreated informa a métricas los lotes nuevos de una recepción ya confirmada.
func (e *Engine) RecordLotsCreated(n int) {
	e.metrics.LotsCreated(n)
}

// LotsByProduct todos los lotes del producto (cualquier estado).
func (e *Engine) LotsByProduct(ctx context.Context, productID string) ([]*entity.InventoryLot, error) {
	var lots []*entity.InventoryLot
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		lots, err = r.Lots.ListByProduct(ctx, productID)
		return err
	})
	return lots, err
}

// MovementsByProduct kardex del producto.
func (e *Engine) MovementsByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	var movs []*entity.StockMovement
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		movs, err = r.Movements.ListByProduct(ctx, productID)
		return err
	})
	return movs, err
}

// RecordMovement agrega un movimiento al kardex sin tocar lotes (anotaciones de ajuste o traslado).
func (e *Engine) RecordMovement(ctx context.Context, m *entity.StockMovement) (*entity.StockMovement, error) {
	if m.ID == "" {
		m.ID = e.newID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = e.now()
	}
	if m.PerformedBy == "" {
		m.PerformedBy = SystemUser
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		product, err := r.Products.GetByID(ctx, m.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, m.ProductID)
		}
		return r.Movements.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ExpireResult resultado del barrido de vencimientos.
type ExpireResult struct {
	Expired  []*entity.InventoryLot
	Products []ports.StockSnapshot
}

// ExpireLots marca EXPIRED los lotes activos con vencimiento anterior a asOf y reagrega el stock
// de los productos afectados. El disponible del lote se conserva. businessID limita el barrido
// a los productos de ese negocio; vacío recorre todos (solo el job programado).
func (e *Engine) ExpireLots(ctx context.Context, businessID string, asOf time.Time) (*ExpireResult, error) {
	res := &ExpireResult{}
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		candidates, err := r.Lots.ListExpiredActive(ctx, businessID, asOf)
		if err != nil {
			return err
		}
		now := e.now()
		res.Expired = res.Expired[:0]
		for _, lot := range candidates {
			if !lot.IsExpiredAt(asOf) || !lot.Expire(now) {
				continue
			}
			if err := r.Lots.Update(ctx, lot); err != nil {
				return err
			}
			res.Expired = append(res.Expired, lot)
		}
		res.Products, err = e.UpdateProductsStockInTx(ctx, r, productIDsOf(res.Expired))
		return err
	})
	if err != nil {
		return nil, err
	}
	e.PublishSnapshots(ctx, res.Products...)
	e.metrics.LotsExpired(len(res.Expired))
	if len(res.Expired) > 0 {
		e.log.Info().Int("lots", len(res.Expired)).Str("business_id", businessID).Time("as_of", asOf).Msg("lotes vencidos")
	}
	return res, nil
}

func productIDsOf(lots []*entity.InventoryLot) []string {
	seen := make(map[string]struct{}, len(lots))
	ids := make([]string, 0, len(lots))
	for _, l := range lots {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
