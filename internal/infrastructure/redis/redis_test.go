package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, func() *StockCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := Client(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return mr, func() *StockCache { return NewStockCache(client, time.Minute) }
}

func TestStockCache_MissReturnsNil(t *testing.T) {
	_, cache := newTestClient(t)

	snap, err := cache().Get(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStockCache_SetGetInvalidate(t *testing.T) {
	mr, newCache := newTestClient(t)
	cache := newCache()
	ctx := context.Background()

	in := ports.StockSnapshot{
		ProductID:     "p-1",
		CurrentStock:  decimal.RequireFromString("12.5"),
		AvailableLots: 2,
		ComputedAt:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Set(ctx, in))

	out, err := cache.Get(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CurrentStock.Equal(out.CurrentStock))
	assert.Equal(t, 2, out.AvailableLots)
	assert.True(t, in.ComputedAt.Equal(out.ComputedAt))

	assert.Equal(t, time.Minute, mr.TTL(stockKeyPrefix+"p-1"))

	require.NoError(t, cache.Invalidate(ctx, "p-1", "p-2"))
	out, err = cache.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestStockCache_EntryExpires(t *testing.T) {
	mr, newCache := newTestClient(t)
	cache := newCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, ports.StockSnapshot{ProductID: "p-1", CurrentStock: decimal.NewFromInt(3)}))
	mr.FastForward(2 * time.Minute)

	out, err := cache.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestNotifier_PublishesJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	client := Client(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	sub := client.Subscribe(ctx, "negocio:notifications")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	NewNotifier(client, "negocio:notifications", nil).Notify(ctx, ports.Notification{
		Level:      ports.NotifyWarning,
		Message:    "Recepción parcial",
		BusinessID: "b-1",
		Reference:  "pur-1",
	})

	select {
	case msg := <-sub.Channel():
		var got ports.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, ports.NotifyWarning, got.Level)
		assert.Equal(t, "pur-1", got.Reference)
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó la notificación")
	}
}
