package dto

import (
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// LotFromEntity convierte un lote a su representación HTTP.
func LotFromEntity(l *entity.InventoryLot) LotResponse {
	return LotResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		LotNumber:         l.LotNumber,
		Quantity:          l.Quantity,
		AvailableQuantity: l.AvailableQuantity,
		UnitCost:          l.UnitCost,
		EntryDate:         l.EntryDate,
		ExpirationDate:    l.ExpirationDate,
		SupplierID:        l.SupplierID,
		PurchaseID:        l.PurchaseID,
		Location:          l.Location,
		Status:            string(l.Status),
	}
}

// LotsFromEntities convierte una lista de lotes.
func LotsFromEntities(lots []*entity.InventoryLot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, LotFromEntity(l))
	}
	return out
}

// MovementFromEntity convierte un movimiento del kardex.
func MovementFromEntity(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Type:        string(m.Type),
		ProductID:   m.ProductID,
		LotNumber:   m.LotNumber,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		Reference:   m.Reference,
		PerformedBy: m.PerformedBy,
		Timestamp:   m.Timestamp,
		Notes:       m.Notes,
	}
}

// StockFromSnapshot convierte una vista de stock.
func StockFromSnapshot(s ports.StockSnapshot) StockResponse {
	return StockResponse{
		ProductID:     s.ProductID,
		CurrentStock:  s.CurrentStock,
		AvailableLots: s.AvailableLots,
		ComputedAt:    s.ComputedAt,
	}
}

// StocksFromSnapshots convierte varias vistas de stock.
func StocksFromSnapshots(snaps []ports.StockSnapshot) []StockResponse {
	out := make([]StockResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, StockFromSnapshot(s))
	}
	return out
}

// PurchaseFromEntity convierte una compra con sus detalles.
func PurchaseFromEntity(p *entity.Purchase) PurchaseResponse {
	details := make([]PurchaseDetailResponse, 0, len(p.Details))
	for _, d := range p.Details {
		details = append(details, PurchaseDetailResponse{
			ID:                d.ID,
			ProductID:         d.ProductID,
			ProductName:       d.ProductName,
			Quantity:          d.Quantity,
			QuantityReceived:  d.QuantityReceived,
			Price:             d.Price,
			TotalAmount:       d.TotalAmount,
			LotNumber:         d.LotNumber,
			EntryDate:         d.EntryDate,
			ExpirationDate:    d.ExpirationDate,
			QualityCheck:      string(d.QualityCheck),
			QualityNotes:      d.QualityNotes,
			WarehouseLocation: d.WarehouseLocation,
		})
	}
	return PurchaseResponse{
		ID:                 p.ID,
		BusinessID:         p.BusinessID,
		SupplierID:         p.SupplierID,
		SupplierName:       p.SupplierName,
		TotalAmount:        p.TotalAmount,
		Status:             string(p.Status),
		ActualDeliveryDate: p.ActualDeliveryDate,
		ReceivedBy:         p.ReceivedBy,
		InvoiceNumber:      p.InvoiceNumber,
		Notes:              p.Notes,
		Details:            details,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// SaleFromEntity convierte una venta con sus detalles.
func SaleFromEntity(s *entity.Sale) SaleResponse {
	details := make([]SaleDetailResponse, 0, len(s.Details))
	for _, d := range s.Details {
		details = append(details, SaleDetailResponse{
			ID:          d.ID,
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
			Price:       d.Price,
			TotalAmount: d.TotalAmount,
		})
	}
	return SaleResponse{
		ID:           s.ID,
		BusinessID:   s.BusinessID,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		TotalAmount:  s.TotalAmount,
		Status:       string(s.Status),
		Details:      details,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
