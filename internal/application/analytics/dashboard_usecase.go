// Package analytics contiene el caso de uso del dashboard de ventas e inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
)

const (
	dashboardTopProducts = 5  // productos en el widget del dashboard
	dashboardLowStock    = 10 // alertas de stock mínimo
	expiringWindow       = 7 * 24 * time.Hour
)

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. now puede ser nil (time.Now).
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, now func() time.Time) *DashboardUseCase {
	if now == nil {
		now = time.Now
	}
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: now}
}

// GetSummary construye el DashboardSummaryDTO para el negocio indicado.
//
// Consultas en paralelo:
//  1. GetSalesMetrics(hoy)   → TodaySales + TodayMargin
//  2. GetSalesMetrics(mes)   → MonthlySales + MonthlyMargin
//  3. GetTopProducts(mes)    → TopProducts
//  4. GetLowStock            → LowStock
//  5. CountPurchasesByStatus → PurchasesByStatus
//  6. CountLotsExpiringBefore(ahora + 7 días) → LotsExpiringSoon
func (uc *DashboardUseCase) GetSummary(ctx context.Context, businessID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		todayRev, todayCost decimal.Decimal
		monthRev, monthCost decimal.Decimal
		top                 []repository.ProductSalesResult
		low                 []repository.LowStockResult
		byStatus            map[string]int
		expiring            int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		todayRev, todayCost, err = uc.analyticsRepo.GetSalesMetrics(gctx, businessID, todayStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: métricas de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		monthRev, monthCost, err = uc.analyticsRepo.GetSalesMetrics(gctx, businessID, monthStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: métricas del mes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		top, err = uc.analyticsRepo.GetTopProducts(gctx, businessID, monthStart, todayEnd, dashboardTopProducts)
		if err != nil {
			return fmt.Errorf("dashboard: top productos: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		low, err = uc.analyticsRepo.GetLowStock(gctx, businessID, dashboardLowStock)
		if err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		byStatus, err = uc.analyticsRepo.CountPurchasesByStatus(gctx, businessID)
		if err != nil {
			return fmt.Errorf("dashboard: compras por estado: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		expiring, err = uc.analyticsRepo.CountLotsExpiringBefore(gctx, businessID, now.Add(expiringWindow))
		if err != nil {
			return fmt.Errorf("dashboard: lotes por vencer: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.DashboardSummaryDTO{
		TodaySales:        todayRev.Round(2),
		TodayMargin:       todayRev.Sub(todayCost).Round(2),
		MonthlySales:      monthRev.Round(2),
		MonthlyMargin:     monthRev.Sub(monthCost).Round(2),
		TopProducts:       make([]dto.TopProductDTO, 0, len(top)),
		LowStock:          make([]dto.LowStockDTO, 0, len(low)),
		PurchasesByStatus: byStatus,
		LotsExpiringSoon:  expiring,
		DateLabel:         monthLabel(now),
	}
	for _, p := range top {
		out.TopProducts = append(out.TopProducts, dto.TopProductDTO{
			ProductID:        p.ProductID,
			SKU:              p.SKU,
			ProductName:      p.ProductName,
			QuantitySold:     p.UnitsSold,
			TotalRevenue:     p.GrossRevenue.Round(2),
			MarginPercentage: marginPct(p.GrossRevenue, p.TotalCOGS),
		})
	}
	for _, l := range low {
		out.LowStock = append(out.LowStock, dto.LowStockDTO(l))
	}
	return out, nil
}

// marginPct (ingreso - costo) / ingreso × 100, 0 si no hubo ingreso.
func marginPct(revenue, cost decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return revenue.Sub(cost).Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
