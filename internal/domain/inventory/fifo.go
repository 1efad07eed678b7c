package inventory

import (
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Allocation cantidad tomada de un lote en un consumo.
type Allocation struct {
	Lot      *entity.InventoryLot
	Quantity decimal.Decimal
}

// ConsumeFIFO consume qty de los lotes recibidos, que deben venir ordenados por fecha de entrada
// ascendente (empates en orden de creación). Muta los lotes tocados y devuelve las asignaciones
// y el faltante no cubierto (0 si se cubrió todo).
func ConsumeFIFO(lots []*entity.InventoryLot, qty decimal.Decimal, now time.Time) ([]Allocation, decimal.Decimal) {
	remaining := qty
	var allocations []Allocation
	for _, lot := range lots {
		if !remaining.IsPositive() {
			break
		}
		taken := lot.Consume(remaining, now)
		if taken.IsZero() {
			continue
		}
		remaining = remaining.Sub(taken)
		allocations = append(allocations, Allocation{Lot: lot, Quantity: taken})
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return allocations, remaining
}
