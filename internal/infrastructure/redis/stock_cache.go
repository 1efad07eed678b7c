package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	goredis "github.com/redis/go-redis/v9"
)

var _ ports.StockCache = (*StockCache)(nil)

const stockKeyPrefix = "negocio:stock:"

// StockCache guarda la última vista de stock por producto como JSON con TTL.
type StockCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewStockCache ttl <= 0 deja las entradas sin expiración.
func NewStockCache(client goredis.UniversalClient, ttl time.Duration) *StockCache {
	if ttl < 0 {
		ttl = 0
	}
	return &StockCache{client: client, ttl: ttl}
}

// Get devuelve (nil, nil) si no hay entrada.
func (c *StockCache) Get(ctx context.Context, productID string) (*ports.StockSnapshot, error) {
	val, err := c.client.Get(ctx, stockKeyPrefix+productID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get stock: %w", err)
	}
	var snap ports.StockSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("decode stock snapshot: %w", err)
	}
	return &snap, nil
}

func (c *StockCache) Set(ctx context.Context, snapshot ports.StockSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode stock snapshot: %w", err)
	}
	if err := c.client.Set(ctx, stockKeyPrefix+snapshot.ProductID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set stock: %w", err)
	}
	return nil
}

func (c *StockCache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = stockKeyPrefix + id
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del stock: %w", err)
	}
	return nil
}
