package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/memory"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

var jan1 = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// mapCache cache de stock en memoria que registra cuántas escrituras recibe.
type mapCache struct {
	mu     sync.Mutex
	items  map[string]ports.StockSnapshot
	sets   int
	getErr error
}

func newMapCache() *mapCache { return &mapCache{items: make(map[string]ports.StockSnapshot)} }

func (c *mapCache) Get(_ context.Context, productID string) (*ports.StockSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	s, ok := c.items[productID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *mapCache) Set(_ context.Context, s ports.StockSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.items[s.ProductID] = s
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
	}
	return nil
}

// countingMetrics acumula los contadores del motor.
type countingMetrics struct {
	ports.NopMetrics
	created  int
	expired  int
	consumed decimal.Decimal
	shortage decimal.Decimal
}

func (m *countingMetrics) LotsCreated(n int)                  { m.created += n }
func (m *countingMetrics) LotsExpired(n int)                  { m.expired += n }
func (m *countingMetrics) StockConsumed(q decimal.Decimal)    { m.consumed = m.consumed.Add(q) }
func (m *countingMetrics) ShortageReported(q decimal.Decimal) { m.shortage = m.shortage.Add(q) }

type fixture struct {
	store   *memory.Store
	engine  *inventory.Engine
	cache   *mapCache
	metrics *countingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	cache := newMapCache()
	metrics := &countingMetrics{}
	seq := 0
	engine := inventory.NewEngine(store, logger.Nop(),
		inventory.WithClock(func() time.Time { return jan1 }),
		inventory.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
		inventory.WithStockCache(cache),
		inventory.WithMetrics(metrics),
	)
	return &fixture{store: store, engine: engine, cache: cache, metrics: metrics}
}

func (f *fixture) product(t *testing.T, id string) {
	t.Helper()
	f.productOf(t, "b1", id)
}

func (f *fixture) productOf(t *testing.T, businessID, id string) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: id, BusinessID: businessID, SKU: "SKU-" + id, Name: "Producto " + id, Price: dec(10), Active: true,
	}))
}

func (f *fixture) receive(t *testing.T, purchaseID string, specs ...inventory.LotSpec) []*entity.InventoryLot {
	t.Helper()
	lots, err := f.engine.CreateLotsFromPurchase(context.Background(), purchaseID, specs, "bodega")
	require.NoError(t, err)
	return lots
}

func (f *fixture) movements(t *testing.T, productID string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.engine.MovementsByProduct(context.Background(), productID)
	require.NoError(t, err)
	return movs
}

func TestCreateLotsFromPurchase(t *testing.T) {
	f := newFixture(t)
	f.product(t, "px")

	lots := f.receive(t, "compra-1", inventory.LotSpec{
		ProductID: "px", LotNumber: "L-1", Quantity: dec(5), UnitCost: dec(10), EntryDate: jan1,
	})

	require.Len(t, lots, 1)
	lot := lots[0]
	assert.Equal(t, entity.LotStatusActive, lot.Status)
	assert.True(t, lot.AvailableQuantity.Equal(dec(5)))
	assert.Equal(t, "compra-1", lot.PurchaseID)

	movs := f.movements(t, "px")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementPurchaseIn, movs[0].Type)
	assert.Equal(t, "L-1", movs[0].LotNumber)
	assert.Equal(t, "compra-1", movs[0].Reference)
	assert.Equal(t, "bodega", movs[0].PerformedBy)

	p, err := f.store.Products().GetByID(context.Background(), "px")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(dec(5)))
	assert.True(t, p.Cost.Equal(dec(10)))

	assert.Equal(t, 1, f.metrics.created)
	assert.Equal(t, 1, f.cache.sets)
	snap, _ := f.cache.Get(context.Background(), "px")
	require.NotNil(t, snap)
	assert.True(t, snap.CurrentStock.Equal(dec(5)))
}

func TestCreateLotsFromPurchase_GeneratesLotNumber(t *testing.T) {
	f := newFixture(t)
	f.product(t, "prod-9876")

	lots := f.receive(t, "compra-1", inventory.LotSpec{ProductID: "prod-9876", Quantity: dec(1), UnitCost: dec(1)})

	require.Len(t, lots, 1)
	assert.Regexp(t, `^LOT202601019876[0-9A-F]{4}$`, lots[0].LotNumber)
	assert.Equal(t, jan1, lots[0].EntryDate)
}

func TestCreateLotsFromPurchase_IdempotentForSamePurchase(t *testing.T) {
	f := newFixture(t)
	f.product(t, "px")
	spec := inventory.LotSpec{ProductID: "px", LotNumber: "L-1", Quantity: dec(5), UnitCost: dec(10), EntryDate: jan1}

	first := f.receive(t, "compra-1", spec)
	again := f.receive(t, "compra-1", spec)

	assert.Equal(t, first[0].ID, again[0].ID)
	assert.Len(t, f.movements(t, "px"), 1)
	p, err := f.store.Products().GetByID(context.Background(), "px")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(dec(5)))
	assert.Equal(t, 1, f.metrics.created, "el reintento no crea lotes")
}

func TestCreateLotsFromPurchase_RetryWithOtherQuantityConflicts(t *testing.T) {
	f := newFixture(t)
	f.product(t, "px")
	f.receive(t, "compra-1", inventory.LotSpec{ProductID: "px", LotNumber: "L-1", Quantity: dec(5), UnitCost: dec(10)})

	_, err := f.engine.CreateLotsFromPurchase(context.Background(), "compra-1", []inventory.LotSpec{
		{ProductID: "px", LotNumber: "L-1", Quantity: dec(3), UnitCost: dec(10)},
	}, "")
	require.ErrorIs(t, err, domain.ErrConflict)

	p, err := f.store.Products().GetByID(context.Background(), "px")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(dec(5)))
}

func TestCreateLotsFromPurchase_SameLotNumberTwiceInOneCall(t *testing.T) {
	f := newFixture(t)
	f.product(t, "px")

	// Dos líneas del mismo producto con el mismo lote del proveedor no se funden en una
	_, err := f.engine.CreateLotsFromPurchase(context.Background(), "compra-1", []inventory.LotSpec{
		{ProductID: "px", LotNumber: "PROV-7", Quantity: dec(5), UnitCost: dec(10)},
		{ProductID: "px", LotNumber: "PROV-7", Quantity: dec(3), UnitCost: dec(12)},
	}, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	lots, err := f.engine.LotsByProduct(context.Background(), "px")
	require.NoError(t, err)
	assert.Empty(t, lots)
	assert.Zero(t, f.metrics.created)
}

func TestCreateLotsFromPurchase_DuplicateAcrossPurchasesRollsBack(t *testing.T) {
	f := newFixture(t)
	f.product(t, "px")
	f.product(t, "py")
	f.receive(t, "compra-1", inventory.LotSpec{ProductID: "px", LotNumber: "L-1", Quantity: dec(5), UnitCost: dec(10)})

	_, err := f.engine.CreateLotsFromPurchase(context.Background(), "compra-2", []inventory.LotSpec{
		{ProductID: "py", LotNumber: "L-9", Quantity: dec(2), UnitCost: dec(3)},
		{ProductID: "px", LotNumber: "L-1", Quantity: dec(1), UnitCost: dec(1)},
	}, "")
	require.ErrorIs(t, err, domain.ErrDuplicate)

	// El lote de py creado antes del fallo no quedó persistido
	lots, err := f.engine.LotsByProduct(context.Background(), "py")
	require.NoError(t, err)
	assert.Empty(t, lots)
	assert.Empty(t, f.movements(t, "py"))
}

func TestCreateLotsFromPurchase_Validation(t *testing.T) {
	f := newFixture(t)
	f.product(t, "px")
	tests := []struct {
		name string
		spec inventory.LotSpec
		want error
	}{
		{"cantidad cero", inventory.LotSpec{ProductID: "px", Quantity: decimal.Zero}, domain.ErrInvalidInput},
		{"costo negativo", inventory.LotSpec{ProductID: "px", Quantity: dec(1), UnitCost: dec(-1)}, domain.ErrInvalidInput},
		{"sin producto", inventory.LotSpec{Quantity: dec(1)}, domain.ErrInvalidInput},
		{"producto inexistente", inventory.LotSpec{ProductID: "nada", Quantity: dec(1)}, domain.ErrNotFound},
		{"cantidad con cinco decimales", inventory.LotSpec{ProductID: "px", Quantity: decimal.RequireFromString("1.00001")}, domain.ErrInvalidInput},
		{"costo con cinco decimales", inventory.LotSpec{ProductID: "px", Quantity: dec(1), UnitCost: decimal.RequireFromString("0.12345")}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateLotsFromPurchase(context.Background(), "c", []inventory.LotSpec{tt.spec}, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateLotsFromPurchase_WeightedAverageCost(t *testing.T) {
	f := newFixture(t)
	f.product(t, "px")
	f.receive(t, "compra-1", inventory.LotSpec{ProductID: "px", LotNumber: "A", Quantity: dec(10), UnitCost: dec(5)})
	f.receive(t, "compra-2", inventory.LotSpec{ProductID: "px", LotNumber: "B", Quantity: dec(10), UnitCost: dec(7)})

	p, err := f.store.Products().GetByID(context.Background(), "px")
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(dec(6)))
	assert.True(t, p.Stock.Equal(dec(20)))

	// 20 a 6 + 10 a 7 = 190 / 30: el costo se guarda con cuatro decimales
	f.receive(t, "compra-3", inventory.LotSpec{ProductID: "px", LotNumber: "C", Quantity: dec(10), UnitCost: dec(7)})
	p, err = f.store.Products().GetByID(context.Background(), "px")
	require.NoError(t, err)
	assert.Equal(t, "6.3333", p.Cost.String())
}

func TestConsumeStock_PartialThenShortage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	f.receive(t, "compra-1", inventory.LotSpec{ProductID: "px", LotNumber: "L-1", Quantity: dec(5), UnitCost: dec(10), EntryDate: jan1})

	// Consumo parcial: el lote sigue activo
	res, err := f.engine.ConsumeStock(ctx, "px", dec(3), "sale-42", "caja")
	require.NoError(t, err)
	assert.True(t, res.Shortage.IsZero())
	require.Len(t, res.ConsumedLots, 1)
	assert.True(t, res.ConsumedLots[0].AvailableQuantity.Equal(dec(2)))
	assert.Equal(t, entity.LotStatusActive, res.ConsumedLots[0].Status)

	// Segundo consumo mayor al saldo: agota el lote y reporta faltante
	res, err = f.engine.ConsumeStock(ctx, "px", dec(5), "sale-43", "caja")
	require.NoError(t, err)
	assert.True(t, res.Shortage.Equal(dec(3)))
	assert.True(t, res.Consumed().Equal(dec(2)))
	require.Len(t, res.ConsumedLots, 1)
	assert.True(t, res.ConsumedLots[0].AvailableQuantity.IsZero())
	assert.Equal(t, entity.LotStatusConsumed, res.ConsumedLots[0].Status)
	assert.True(t, res.Stock.CurrentStock.IsZero())

	movs := f.movements(t, "px")
	require.Len(t, movs, 3)
	assert.Equal(t, entity.MovementSaleOut, movs[1].Type)
	assert.True(t, movs[1].Quantity.Equal(dec(3)))
	assert.Equal(t, "sale-42", movs[1].Reference)
	assert.Equal(t, entity.MovementSaleOut, movs[2].Type)
	assert.True(t, movs[2].Quantity.Equal(dec(2)))
	assert.Equal(t, "sale-43", movs[2].Reference)

	assert.True(t, f.metrics.consumed.Equal(dec(5)))
	assert.True(t, f.metrics.shortage.Equal(dec(3)))
}

func TestConsumeStock_FIFOByEntryDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	// Se recibe primero el lote más nuevo
	f.receive(t, "compra-2", inventory.LotSpec{ProductID: "px", LotNumber: "NUEVO", Quantity: dec(4), UnitCost: dec(2), EntryDate: jan1.AddDate(0, 0, 5)})
	f.receive(t, "compra-1", inventory.LotSpec{ProductID: "px", LotNumber: "VIEJO", Quantity: dec(4), UnitCost: dec(1), EntryDate: jan1})

	res, err := f.engine.ConsumeStock(ctx, "px", dec(6), "sale-1", "")
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, "VIEJO", res.Allocations[0].LotNumber)
	assert.True(t, res.Allocations[0].Quantity.Equal(dec(4)))
	assert.True(t, res.Allocations[0].UnitCost.Equal(dec(1)))
	assert.Equal(t, "NUEVO", res.Allocations[1].LotNumber)
	assert.True(t, res.Allocations[1].Quantity.Equal(dec(2)))
}

func TestConsumeStock_SameEntryDateInCreationOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	// Misma fecha de entrada: el número de lote no debe decidir el orden
	f.receive(t, "compra-1", inventory.LotSpec{ProductID: "px", LotNumber: "Z-PRIMERO", Quantity: dec(3), UnitCost: dec(1), EntryDate: jan1})
	f.receive(t, "compra-2", inventory.LotSpec{ProductID: "px", LotNumber: "A-SEGUNDO", Quantity: dec(3), UnitCost: dec(2), EntryDate: jan1})

	res, err := f.engine.ConsumeStock(ctx, "px", dec(4), "sale-1", "")
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, "Z-PRIMERO", res.Allocations[0].LotNumber)
	assert.True(t, res.Allocations[0].Quantity.Equal(dec(3)))
	assert.Equal(t, "A-SEGUNDO", res.Allocations[1].LotNumber)
	assert.True(t, res.Allocations[1].Quantity.Equal(dec(1)))
}

func TestConsumeStockInTx_RollbackRecordsNoMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	f.receive(t, "c1", inventory.LotSpec{ProductID: "px", LotNumber: "A", Quantity: dec(2), UnitCost: dec(1)})
	createdBefore := f.metrics.created

	abort := errors.New("abortar")
	err := f.store.Run(ctx, func(r ports.Repos) error {
		if _, _, err := f.engine.CreateLotsFromPurchaseInTx(ctx, r, "c2",
			[]inventory.LotSpec{{ProductID: "px", LotNumber: "B", Quantity: dec(1), UnitCost: dec(1)}}, ""); err != nil {
			return err
		}
		if _, err := f.engine.ConsumeStockInTx(ctx, r, "px", dec(5), "sale-x", ""); err != nil {
			return err
		}
		return abort
	})
	require.ErrorIs(t, err, abort)

	assert.Equal(t, createdBefore, f.metrics.created)
	assert.True(t, f.metrics.consumed.IsZero())
	assert.True(t, f.metrics.shortage.IsZero())

	// Confirmado, el consumo se informa una vez
	var res *inventory.ConsumeResult
	require.NoError(t, f.store.Run(ctx, func(r ports.Repos) error {
		var err error
		res, err = f.engine.ConsumeStockInTx(ctx, r, "px", dec(5), "sale-y", "")
		return err
	}))
	f.engine.RecordConsumption(res)
	assert.True(t, f.metrics.consumed.Equal(dec(2)))
	assert.True(t, f.metrics.shortage.Equal(dec(3)))
}

func TestConsumeStock_Conservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	f.receive(t, "c1",
		inventory.LotSpec{ProductID: "px", LotNumber: "A", Quantity: dec(7), UnitCost: dec(1), EntryDate: jan1},
	)
	f.receive(t, "c2",
		inventory.LotSpec{ProductID: "px", LotNumber: "B", Quantity: dec(5), UnitCost: dec(1), EntryDate: jan1.AddDate(0, 0, 1)},
	)
	for _, q := range []int64{3, 4, 2, 6} {
		_, err := f.engine.ConsumeStock(ctx, "px", dec(q), "s", "")
		require.NoError(t, err)
	}

	in, out := decimal.Zero, decimal.Zero
	for _, m := range f.movements(t, "px") {
		switch m.Type {
		case entity.MovementPurchaseIn:
			in = in.Add(m.Quantity)
		case entity.MovementSaleOut:
			out = out.Add(m.Quantity)
		}
	}
	lots, err := f.engine.LotsByProduct(ctx, "px")
	require.NoError(t, err)
	available := decimal.Zero
	for _, l := range lots {
		available = available.Add(l.AvailableQuantity)
		assert.True(t, l.AvailableQuantity.LessThanOrEqual(l.Quantity))
		assert.Equal(t, l.AvailableQuantity.IsZero(), l.Status == entity.LotStatusConsumed)
	}
	assert.True(t, in.Sub(out).Equal(available), "entradas - salidas = disponible")
	assert.True(t, out.Equal(dec(12)))
}

func TestConsumeStock_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")

	_, err := f.engine.ConsumeStock(ctx, "px", decimal.Zero, "s", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.engine.ConsumeStock(ctx, "nada", dec(1), "s", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Sin lotes todo es faltante y no se registran movimientos
	res, err := f.engine.ConsumeStock(ctx, "px", dec(2), "s", "")
	require.NoError(t, err)
	assert.True(t, res.Shortage.Equal(dec(2)))
	assert.Empty(t, f.movements(t, "px"))
}

func TestExpireLots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	soon := jan1.AddDate(0, 0, 10)
	later := jan1.AddDate(0, 3, 0)
	f.receive(t, "c1",
		inventory.LotSpec{ProductID: "px", LotNumber: "VENCE", Quantity: dec(3), UnitCost: dec(1), ExpirationDate: &soon},
		inventory.LotSpec{ProductID: "px", LotNumber: "DURA", Quantity: dec(4), UnitCost: dec(1), ExpirationDate: &later},
	)

	res, err := f.engine.ExpireLots(ctx, "", jan1.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, res.Expired, 1)
	assert.Equal(t, "VENCE", res.Expired[0].LotNumber)
	assert.Equal(t, entity.LotStatusExpired, res.Expired[0].Status)
	assert.True(t, res.Expired[0].AvailableQuantity.Equal(dec(3)))
	require.Len(t, res.Products, 1)
	assert.True(t, res.Products[0].CurrentStock.Equal(dec(4)))
	assert.Equal(t, 1, f.metrics.expired)

	// Un segundo barrido no encuentra nada
	res, err = f.engine.ExpireLots(ctx, "", jan1.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, res.Expired)

	// Los lotes vencidos no se consumen
	consumed, err := f.engine.ConsumeStock(ctx, "px", dec(6), "s", "")
	require.NoError(t, err)
	assert.True(t, consumed.Shortage.Equal(dec(2)))
	require.Len(t, consumed.Allocations, 1)
	assert.Equal(t, "DURA", consumed.Allocations[0].LotNumber)
}

func TestExpireLots_OnlyCallerBusiness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.productOf(t, "b1", "propio")
	f.productOf(t, "b2", "ajeno")
	soon := jan1.AddDate(0, 0, 3)
	f.receive(t, "c1", inventory.LotSpec{ProductID: "propio", LotNumber: "P", Quantity: dec(2), UnitCost: dec(1), ExpirationDate: &soon})
	f.receive(t, "c2", inventory.LotSpec{ProductID: "ajeno", LotNumber: "A", Quantity: dec(5), UnitCost: dec(1), ExpirationDate: &soon})

	res, err := f.engine.ExpireLots(ctx, "b1", jan1.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, res.Expired, 1)
	assert.Equal(t, "propio", res.Expired[0].ProductID)

	other, err := f.store.Products().GetByID(ctx, "ajeno")
	require.NoError(t, err)
	assert.True(t, other.Stock.Equal(dec(5)), "el lote de otro negocio sigue activo")

	// El barrido global sí lo alcanza
	res, err = f.engine.ExpireLots(ctx, "", jan1.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, res.Expired, 1)
	assert.Equal(t, "ajeno", res.Expired[0].ProductID)
}

func TestCheckAvailableStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	f.receive(t, "c1",
		inventory.LotSpec{ProductID: "px", LotNumber: "A", Quantity: dec(2), UnitCost: dec(1), EntryDate: jan1},
		inventory.LotSpec{ProductID: "px", LotNumber: "B", Quantity: dec(3), UnitCost: dec(1), EntryDate: jan1.AddDate(0, 0, 1)},
	)
	_, err := f.engine.ConsumeStock(ctx, "px", dec(2), "s", "")
	require.NoError(t, err)

	av, err := f.engine.CheckAvailableStock(ctx, "px")
	require.NoError(t, err)
	assert.True(t, av.Available.Equal(dec(3)))
	require.Len(t, av.Lots, 1)
	assert.Equal(t, "B", av.Lots[0].LotNumber)

	_, err = f.engine.CheckAvailableStock(ctx, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductStock_UsesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")

	// Sin entrada en cache se recalcula y se publica
	snap, err := f.engine.ProductStock(ctx, "px")
	require.NoError(t, err)
	assert.True(t, snap.CurrentStock.IsZero())
	assert.Equal(t, 1, f.cache.sets)

	// Con entrada se devuelve tal cual
	require.NoError(t, f.cache.Set(ctx, ports.StockSnapshot{ProductID: "px", CurrentStock: dec(99)}))
	snap, err = f.engine.ProductStock(ctx, "px")
	require.NoError(t, err)
	assert.True(t, snap.CurrentStock.Equal(dec(99)))

	// Si la cache falla se recalcula desde los lotes
	f.cache.getErr = errors.New("redis caído")
	snap, err = f.engine.ProductStock(ctx, "px")
	require.NoError(t, err)
	assert.True(t, snap.CurrentStock.IsZero())
}

func TestUpdateProductStock_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")
	f.receive(t, "c1",
		inventory.LotSpec{ProductID: "px", LotNumber: "A", Quantity: dec(4), UnitCost: dec(1)},
		inventory.LotSpec{ProductID: "px", LotNumber: "B", Quantity: dec(6), UnitCost: dec(1)},
	)
	_, err := f.engine.ConsumeStock(ctx, "px", dec(5), "s", "")
	require.NoError(t, err)

	first, err := f.engine.UpdateProductStock(ctx, "px")
	require.NoError(t, err)
	second, err := f.engine.UpdateProductStock(ctx, "px")
	require.NoError(t, err)

	assert.True(t, first.CurrentStock.Equal(dec(5)))
	assert.True(t, second.CurrentStock.Equal(first.CurrentStock))
	assert.Equal(t, first.AvailableLots, second.AvailableLots)
	p, err := f.store.Products().GetByID(ctx, "px")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(dec(5)))
}

func TestRecordMovement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "px")

	m, err := f.engine.RecordMovement(ctx, &entity.StockMovement{
		Type: entity.MovementAdjustment, ProductID: "px", Quantity: dec(2), Notes: "conteo físico",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, inventory.SystemUser, m.PerformedBy)
	assert.Equal(t, jan1, m.Timestamp)

	// Solo anota: el stock no cambia
	p, err := f.store.Products().GetByID(ctx, "px")
	require.NoError(t, err)
	assert.True(t, p.Stock.IsZero())

	_, err = f.engine.RecordMovement(ctx, &entity.StockMovement{Type: entity.MovementTransfer, ProductID: "nada", Quantity: dec(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
