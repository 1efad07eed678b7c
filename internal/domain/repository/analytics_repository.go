package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductSalesResult resultado crudo de ventas completadas de un producto en un período.
// TotalCOGS sale de los movimientos SALE_OUT (costo real de los lotes consumidos).
type ProductSalesResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	UnitsSold    decimal.Decimal
	GrossRevenue decimal.Decimal
	TotalCOGS    decimal.Decimal
}

// LowStockResult producto con stock en o por debajo de su mínimo.
type LowStockResult struct {
	ProductID   string
	SKU         string
	ProductName string
	Stock       decimal.Decimal
	MinStock    decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura para el dashboard del negocio.
// Solo cuentan ventas COMPLETED; la fecha de referencia es la de su última actualización.
type AnalyticsRepository interface {
	// GetSalesMetrics ingresos brutos y COGS de las ventas completadas en [from, to].
	// Devuelve cero si no hay ventas en el período.
	GetSalesMetrics(ctx context.Context, businessID string, from, to time.Time) (revenue, cost decimal.Decimal, err error)

	// GetTopProducts los `limit` productos con mayor ingreso en el período.
	GetTopProducts(ctx context.Context, businessID string, from, to time.Time, limit int) ([]ProductSalesResult, error)

	// GetLowStock productos con min_stock > 0 y stock <= min_stock, del más crítico al menos.
	GetLowStock(ctx context.Context, businessID string, limit int) ([]LowStockResult, error)

	// CountPurchasesByStatus cantidad de compras del negocio por estado.
	CountPurchasesByStatus(ctx context.Context, businessID string) (map[string]int, error)

	// CountLotsExpiringBefore lotes activos con saldo de productos del negocio que vencen antes de `before`.
	CountLotsExpiringBefore(ctx context.Context, businessID string, before time.Time) (int, error)
}
