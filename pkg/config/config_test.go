package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, int32(2), cfg.DB.MinConns)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 5, cfg.DB.ConnectAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Redis.StockCacheTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Policy.PurchaseShipFromPending)
	assert.True(t, cfg.Policy.SaleAllowBackorder)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("STOCK_CACHE_TTL_SECONDS", "30")
	t.Setenv("PURCHASE_SHIP_FROM_PENDING", "true")
	t.Setenv("SALE_ALLOW_BACKORDER", "false")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_CONNECT_ATTEMPTS", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.StockCacheTTL)
	assert.True(t, cfg.Policy.PurchaseShipFromPending)
	assert.False(t, cfg.Policy.SaleAllowBackorder)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 1, cfg.DB.ConnectAttempts)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapesPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "negocio", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/negocio?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
