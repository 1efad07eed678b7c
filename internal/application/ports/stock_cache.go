package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshot vista agregada del stock de un producto.
type StockSnapshot struct {
	ProductID     string          `json:"product_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	AvailableLots int             `json:"available_lots"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// StockCache cache de la última vista de stock calculada. Get devuelve (nil, nil) si no hay entrada.
type StockCache interface {
	Get(ctx context.Context, productID string) (*StockSnapshot, error)
	Set(ctx context.Context, snapshot StockSnapshot) error
	Invalidate(ctx context.Context, productIDs ...string) error
}
