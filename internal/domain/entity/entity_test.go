package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

func TestPurchaseStatus_Transitions(t *testing.T) {
	allowed := map[entity.PurchaseStatus][]entity.PurchaseStatus{
		entity.PurchaseStatusPending:   {entity.PurchaseStatusOrdered, entity.PurchaseStatusCanceled},
		entity.PurchaseStatusOrdered:   {entity.PurchaseStatusInTransit, entity.PurchaseStatusReceived, entity.PurchaseStatusCanceled},
		entity.PurchaseStatusInTransit: {entity.PurchaseStatusReceived, entity.PurchaseStatusCanceled},
		entity.PurchaseStatusReceived:  {entity.PurchaseStatusInvoiced, entity.PurchaseStatusCompleted, entity.PurchaseStatusCanceled},
		entity.PurchaseStatusInvoiced:  {entity.PurchaseStatusCompleted, entity.PurchaseStatusCanceled},
		entity.PurchaseStatusCompleted: nil,
		entity.PurchaseStatusCanceled:  nil,
	}
	all := []entity.PurchaseStatus{
		entity.PurchaseStatusPending, entity.PurchaseStatusOrdered, entity.PurchaseStatusInTransit,
		entity.PurchaseStatusReceived, entity.PurchaseStatusInvoiced, entity.PurchaseStatusCompleted,
		entity.PurchaseStatusCanceled,
	}
	for from, targets := range allowed {
		ok := make(map[entity.PurchaseStatus]bool, len(targets))
		for _, to := range targets {
			ok[to] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestPurchaseStatus_Guards(t *testing.T) {
	assert.True(t, entity.PurchaseStatusOrdered.CanReceive())
	assert.True(t, entity.PurchaseStatusInTransit.CanReceive())
	assert.False(t, entity.PurchaseStatusPending.CanReceive())
	assert.False(t, entity.PurchaseStatusReceived.CanReceive())

	assert.True(t, entity.PurchaseStatusPending.CanEdit())
	assert.True(t, entity.PurchaseStatusOrdered.CanEdit())
	assert.False(t, entity.PurchaseStatusInTransit.CanEdit())

	assert.False(t, entity.PurchaseStatus("ARCHIVED").IsValid())
}

func TestPurchase_TransitionTo(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	p := &entity.Purchase{ID: "c1", Status: entity.PurchaseStatusPending}

	require.NoError(t, p.TransitionTo(entity.PurchaseStatusOrdered, now))
	assert.Equal(t, entity.PurchaseStatusOrdered, p.Status)
	assert.Equal(t, now, p.UpdatedAt)

	err := p.TransitionTo(entity.PurchaseStatusCompleted, now)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, entity.PurchaseStatusOrdered, p.Status)
}

func TestPurchase_RecalculateTotals(t *testing.T) {
	p := &entity.Purchase{Details: []entity.PurchaseDetail{
		{Quantity: decimal.NewFromInt(3), Price: decimal.RequireFromString("2.50")},
		{Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(10)},
	}}
	p.RecalculateTotals()
	assert.True(t, p.Details[0].TotalAmount.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, p.TotalAmount.Equal(decimal.RequireFromString("27.5")))
}

func TestPurchaseDetail_ReceivableAndBackordered(t *testing.T) {
	eight := decimal.NewFromInt(8)
	twelve := decimal.NewFromInt(12)
	tests := []struct {
		name       string
		detail     entity.PurchaseDetail
		receivable int64
		backorder  int64
	}{
		{"sin recepción registrada usa lo ordenado", entity.PurchaseDetail{Quantity: decimal.NewFromInt(10)}, 10, 0},
		{"recepción parcial", entity.PurchaseDetail{Quantity: decimal.NewFromInt(10), QuantityReceived: &eight}, 8, 2},
		{"recepción de más", entity.PurchaseDetail{Quantity: decimal.NewFromInt(10), QuantityReceived: &twelve}, 12, 0},
		{"rechazada no ingresa", entity.PurchaseDetail{Quantity: decimal.NewFromInt(10), QualityCheck: entity.QualityRejected}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.detail.ReceivableQuantity().Equal(decimal.NewFromInt(tt.receivable)))
			assert.True(t, tt.detail.Backordered().Equal(decimal.NewFromInt(tt.backorder)))
		})
	}
}

func TestPurchase_CloneIsDeep(t *testing.T) {
	q := decimal.NewFromInt(4)
	p := &entity.Purchase{Details: []entity.PurchaseDetail{{ProductID: "p1", QuantityReceived: &q}}}
	cp := p.Clone()
	*cp.Details[0].QuantityReceived = decimal.NewFromInt(1)
	cp.Details[0].ProductID = "p2"
	assert.True(t, p.Details[0].QuantityReceived.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "p1", p.Details[0].ProductID)
}

func TestSaleStatus_Transitions(t *testing.T) {
	assert.True(t, entity.SaleStatusPending.CanTransitionTo(entity.SaleStatusCompleted))
	assert.True(t, entity.SaleStatusPending.CanTransitionTo(entity.SaleStatusCanceled))
	assert.False(t, entity.SaleStatusCompleted.CanTransitionTo(entity.SaleStatusCanceled))
	assert.False(t, entity.SaleStatusCanceled.CanTransitionTo(entity.SaleStatusPending))

	s := &entity.Sale{ID: "v1", Status: entity.SaleStatusCompleted}
	require.ErrorIs(t, s.TransitionTo(entity.SaleStatusCanceled, time.Now()), domain.ErrInvalidTransition)
}

func TestInventoryLot_Consume(t *testing.T) {
	now := time.Now()
	lot := &entity.InventoryLot{
		Quantity:          decimal.NewFromInt(5),
		AvailableQuantity: decimal.NewFromInt(5),
		Status:            entity.LotStatusActive,
	}
	assert.True(t, lot.Consume(decimal.NewFromInt(3), now).Equal(decimal.NewFromInt(3)))
	assert.Equal(t, entity.LotStatusActive, lot.Status)
	assert.True(t, lot.Consume(decimal.NewFromInt(9), now).Equal(decimal.NewFromInt(2)))
	assert.Equal(t, entity.LotStatusConsumed, lot.Status)
	assert.True(t, lot.Consume(decimal.NewFromInt(1), now).IsZero())
	require.NoError(t, lot.Validate())
}

func TestInventoryLot_Expire(t *testing.T) {
	exp := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	lot := &entity.InventoryLot{
		Quantity:          decimal.NewFromInt(5),
		AvailableQuantity: decimal.NewFromInt(5),
		ExpirationDate:    &exp,
		Status:            entity.LotStatusActive,
	}
	assert.False(t, lot.IsExpiredAt(exp))
	assert.True(t, lot.IsExpiredAt(exp.Add(time.Second)))
	assert.True(t, lot.Expire(time.Now()))
	assert.Equal(t, entity.LotStatusExpired, lot.Status)
	assert.True(t, lot.AvailableQuantity.Equal(decimal.NewFromInt(5)))
	assert.False(t, lot.Expire(time.Now()))
}

func TestInventoryLot_Validate(t *testing.T) {
	valid := func() entity.InventoryLot {
		return entity.InventoryLot{
			ProductID:         "p1",
			LotNumber:         "LOT1",
			Quantity:          decimal.NewFromInt(5),
			AvailableQuantity: decimal.NewFromInt(5),
			UnitCost:          decimal.NewFromInt(2),
			Status:            entity.LotStatusActive,
		}
	}
	tests := []struct {
		name   string
		mutate func(l *entity.InventoryLot)
	}{
		{"sin producto", func(l *entity.InventoryLot) { l.ProductID = "" }},
		{"sin número", func(l *entity.InventoryLot) { l.LotNumber = "" }},
		{"cantidad cero", func(l *entity.InventoryLot) { l.Quantity = decimal.Zero }},
		{"disponible mayor al original", func(l *entity.InventoryLot) { l.AvailableQuantity = decimal.NewFromInt(6) }},
		{"costo negativo", func(l *entity.InventoryLot) { l.UnitCost = decimal.NewFromInt(-1) }},
		{"cero sin CONSUMED", func(l *entity.InventoryLot) { l.AvailableQuantity = decimal.Zero }},
		{"CONSUMED con disponible", func(l *entity.InventoryLot) { l.Status = entity.LotStatusConsumed }},
	}
	base := valid()
	require.NoError(t, base.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid()
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), domain.ErrInvalidInput)
		})
	}
}

func TestStockMovement_Validate(t *testing.T) {
	m := &entity.StockMovement{Type: entity.MovementSaleOut, ProductID: "p1", Quantity: decimal.NewFromInt(1)}
	require.NoError(t, m.Validate())

	m.Type = "RETURN"
	assert.ErrorIs(t, m.Validate(), domain.ErrInvalidInput)

	m.Type = entity.MovementAdjustment
	m.Quantity = decimal.NewFromInt(-1)
	assert.ErrorIs(t, m.Validate(), domain.ErrInvalidInput)
}
