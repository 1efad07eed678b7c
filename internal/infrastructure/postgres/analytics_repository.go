package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de ventas e inventario.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// saleCOGS costo real despachado: movimientos SALE_OUT cuya referencia es la venta.
const saleCOGS = `
	SELECT m.reference, m.product_id, SUM(m.quantity * COALESCE(m.unit_cost, 0)) AS cogs
	FROM stock_movements m
	WHERE m.type = 'SALE_OUT'
	GROUP BY m.reference, m.product_id`

// GetSalesMetrics ingresos y COGS de las ventas completadas del período.
func (r *AnalyticsRepo) GetSalesMetrics(
	ctx context.Context,
	businessID string,
	from, to time.Time,
) (decimal.Decimal, decimal.Decimal, error) {
	query := `
	WITH done AS (
	    SELECT id, total_amount
	    FROM sales
	    WHERE business_id = $1
	      AND status = 'COMPLETED'
	      AND updated_at BETWEEN $2 AND $3
	), cogs AS (` + saleCOGS + `)
	SELECT
	    COALESCE((SELECT SUM(total_amount) FROM done), 0)                       AS revenue,
	    COALESCE((SELECT SUM(c.cogs) FROM cogs c JOIN done d ON c.reference = d.id::TEXT), 0) AS cost`

	var revenue, cost decimal.Decimal
	if err := r.q.QueryRow(ctx, query, businessID, from, to).Scan(&revenue, &cost); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return revenue, cost, nil
}

// GetTopProducts productos con mayor ingreso en ventas completadas, con su COGS.
func (r *AnalyticsRepo) GetTopProducts(
	ctx context.Context,
	businessID string,
	from, to time.Time,
	limit int,
) ([]repository.ProductSalesResult, error) {
	query := `
	WITH lines AS (
	    SELECT d.product_id,
	           SUM(d.quantity)     AS units_sold,
	           SUM(d.total_amount) AS gross_revenue
	    FROM sale_details d
	    JOIN sales s ON s.id = d.sale_id
	    WHERE s.business_id = $1
	      AND s.status = 'COMPLETED'
	      AND s.updated_at BETWEEN $2 AND $3
	    GROUP BY d.product_id
	), cogs AS (
	    SELECT c.product_id, SUM(c.cogs) AS total_cogs
	    FROM (` + saleCOGS + `) c
	    JOIN sales s ON c.reference = s.id::TEXT
	    WHERE s.business_id = $1
	      AND s.status = 'COMPLETED'
	      AND s.updated_at BETWEEN $2 AND $3
	    GROUP BY c.product_id
	)
	SELECT p.id, p.sku, p.name, l.units_sold, l.gross_revenue, COALESCE(c.total_cogs, 0)
	FROM lines l
	JOIN products p ON p.id = l.product_id
	LEFT JOIN cogs c ON c.product_id = l.product_id
	ORDER BY l.gross_revenue DESC, p.sku
	LIMIT $4`

	rows, err := r.q.Query(ctx, query, businessID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	results := []repository.ProductSalesResult{}
	for rows.Next() {
		var row repository.ProductSalesResult
		if err := rows.Scan(
			&row.ProductID,
			&row.SKU,
			&row.ProductName,
			&row.UnitsSold,
			&row.GrossRevenue,
			&row.TotalCOGS,
		); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts rows: %w", err)
	}
	return results, nil
}

// GetLowStock productos activos bajo mínimo, ordenados por faltante.
func (r *AnalyticsRepo) GetLowStock(ctx context.Context, businessID string, limit int) ([]repository.LowStockResult, error) {
	sql, args, err := psql.Select("id", "sku", "name", "stock", "min_stock").
		From("products").
		Where(squirrel.Eq{"business_id": businessID, "active": true}).
		Where(squirrel.Gt{"min_stock": 0}).
		Where("stock <= min_stock").
		OrderBy("min_stock - stock DESC", "sku").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("analytics.GetLowStock build: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetLowStock: %w", err)
	}
	defer rows.Close()

	var results []repository.LowStockResult
	for rows.Next() {
		var row repository.LowStockResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.ProductName, &row.Stock, &row.MinStock); err != nil {
			return nil, fmt.Errorf("analytics.GetLowStock scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// CountPurchasesByStatus conteo de compras por estado.
func (r *AnalyticsRepo) CountPurchasesByStatus(ctx context.Context, businessID string) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*) FROM purchases WHERE business_id = $1 GROUP BY status`, businessID)
	if err != nil {
		return nil, fmt.Errorf("analytics.CountPurchasesByStatus: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("analytics.CountPurchasesByStatus scan: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// CountLotsExpiringBefore lotes activos con saldo que vencen antes de la fecha.
func (r *AnalyticsRepo) CountLotsExpiringBefore(ctx context.Context, businessID string, before time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM inventory_lots l
		JOIN products p ON p.id = l.product_id
		WHERE p.business_id = $1
		  AND l.status = 'ACTIVE'
		  AND l.available_quantity > 0
		  AND l.expiration_date IS NOT NULL
		  AND l.expiration_date < $2`, businessID, before).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("analytics.CountLotsExpiringBefore: %w", err)
	}
	return n, nil
}
