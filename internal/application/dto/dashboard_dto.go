package dto

import "github.com/shopspring/decimal"

// TopProductDTO producto destacado del mes por ingreso.
type TopProductDTO struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	QuantitySold     decimal.Decimal `json:"quantity_sold"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
}

// LowStockDTO producto en o bajo su stock mínimo.
type LowStockDTO struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
}

// DashboardSummaryDTO resumen de ventas e inventario del día y del mes en curso.
type DashboardSummaryDTO struct {
	TodaySales        decimal.Decimal `json:"today_sales"`
	TodayMargin       decimal.Decimal `json:"today_margin"`
	MonthlySales      decimal.Decimal `json:"monthly_sales"`
	MonthlyMargin     decimal.Decimal `json:"monthly_margin"`
	TopProducts       []TopProductDTO `json:"top_products"`
	LowStock          []LowStockDTO   `json:"low_stock"`
	PurchasesByStatus map[string]int  `json:"purchases_by_status"`
	LotsExpiringSoon  int             `json:"lots_expiring_soon"`
	DateLabel         string          `json:"date_label"`
}
