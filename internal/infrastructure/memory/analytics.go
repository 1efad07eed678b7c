package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AnalyticsRepository consultas del dashboard sobre el estado publicado del store.
type AnalyticsRepository struct {
	store *Store
}

var _ repository.AnalyticsRepository = (*AnalyticsRepository)(nil)

// Analytics lecturas agregadas para el dashboard.
func (s *Store) Analytics() *AnalyticsRepository {
	return &AnalyticsRepository{store: s}
}

// read ejecuta fn con el estado bloqueado; el estado no se modifica.
func (a *AnalyticsRepository) read(ctx context.Context, fn func(st *state)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	fn(a.store.state)
	return nil
}

func completedIn(s *entity.Sale, businessID string, from, to time.Time) bool {
	return s.BusinessID == businessID &&
		s.Status == entity.SaleStatusCompleted &&
		!s.UpdatedAt.Before(from) && !s.UpdatedAt.After(to)
}

// saleCost costo de lo despachado por los movimientos SALE_OUT de la venta, opcionalmente de un solo producto.
func saleCost(st *state, saleID, productID string) decimal.Decimal {
	total := decimal.Zero
	for i := range st.movements {
		m := &st.movements[i]
		if m.Type != entity.MovementSaleOut || m.Reference != saleID || m.UnitCost == nil {
			continue
		}
		if productID != "" && m.ProductID != productID {
			continue
		}
		total = total.Add(m.Quantity.Mul(*m.UnitCost))
	}
	return total
}

func (a *AnalyticsRepository) GetSalesMetrics(ctx context.Context, businessID string, from, to time.Time) (revenue, cost decimal.Decimal, err error) {
	revenue, cost = decimal.Zero, decimal.Zero
	err = a.read(ctx, func(st *state) {
		for _, s := range st.sales {
			if !completedIn(s, businessID, from, to) {
				continue
			}
			revenue = revenue.Add(s.TotalAmount)
			cost = cost.Add(saleCost(st, s.ID, ""))
		}
	})
	return revenue, cost, err
}

func (a *AnalyticsRepository) GetTopProducts(ctx context.Context, businessID string, from, to time.Time, limit int) ([]repository.ProductSalesResult, error) {
	byProduct := make(map[string]*repository.ProductSalesResult)
	err := a.read(ctx, func(st *state) {
		for _, s := range st.sales {
			if !completedIn(s, businessID, from, to) {
				continue
			}
			seen := make(map[string]bool)
			for _, d := range s.Details {
				row, ok := byProduct[d.ProductID]
				if !ok {
					p := st.products[d.ProductID]
					row = &repository.ProductSalesResult{
						ProductID:    d.ProductID,
						SKU:          p.SKU,
						ProductName:  p.Name,
						UnitsSold:    decimal.Zero,
						GrossRevenue: decimal.Zero,
						TotalCOGS:    decimal.Zero,
					}
					byProduct[d.ProductID] = row
				}
				row.UnitsSold = row.UnitsSold.Add(d.Quantity)
				row.GrossRevenue = row.GrossRevenue.Add(d.TotalAmount)
				// el costo se toma una vez por venta y producto aunque el producto aparezca en varias líneas
				if !seen[d.ProductID] {
					seen[d.ProductID] = true
					row.TotalCOGS = row.TotalCOGS.Add(saleCost(st, s.ID, d.ProductID))
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}

	out := make([]repository.ProductSalesResult, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].GrossRevenue.Cmp(out[j].GrossRevenue); c != 0 {
			return c > 0
		}
		return out[i].SKU < out[j].SKU
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *AnalyticsRepository) GetLowStock(ctx context.Context, businessID string, limit int) ([]repository.LowStockResult, error) {
	var out []repository.LowStockResult
	err := a.read(ctx, func(st *state) {
		for _, p := range st.products {
			if p.BusinessID != businessID || !p.Active || !p.MinStock.IsPositive() || p.Stock.GreaterThan(p.MinStock) {
				continue
			}
			out = append(out, repository.LowStockResult{
				ProductID:   p.ID,
				SKU:         p.SKU,
				ProductName: p.Name,
				Stock:       p.Stock,
				MinStock:    p.MinStock,
			})
		}
	})
	if err != nil {
		return nil, err
	}
	// más crítico primero: mayor faltante respecto al mínimo
	sort.Slice(out, func(i, j int) bool {
		gi, gj := out[i].MinStock.Sub(out[i].Stock), out[j].MinStock.Sub(out[j].Stock)
		if c := gi.Cmp(gj); c != 0 {
			return c > 0
		}
		return strings.Compare(out[i].SKU, out[j].SKU) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *AnalyticsRepository) CountPurchasesByStatus(ctx context.Context, businessID string) (map[string]int, error) {
	out := make(map[string]int)
	err := a.read(ctx, func(st *state) {
		for _, p := range st.purchases {
			if p.BusinessID == businessID {
				out[string(p.Status)]++
			}
		}
	})
	return out, err
}

func (a *AnalyticsRepository) CountLotsExpiringBefore(ctx context.Context, businessID string, before time.Time) (int, error) {
	n := 0
	err := a.read(ctx, func(st *state) {
		for _, sl := range st.lots {
			l := sl.lot
			if !l.IsActive() || !l.AvailableQuantity.IsPositive() || l.ExpirationDate == nil {
				continue
			}
			if st.products[l.ProductID].BusinessID != businessID {
				continue
			}
			if l.ExpirationDate.Before(before) {
				n++
			}
		}
	})
	return n, err
}
