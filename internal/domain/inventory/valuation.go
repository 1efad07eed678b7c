package inventory

import (
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Valuation existencias de un producto valorizadas a costo promedio.
type Valuation struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// Receive valorización tras ingresar qty unidades a unitCost:
//
//	costo = (existencias*costo + qty*unitCost) / (existencias + qty)
//
// El costo se redondea a entity.AmountScale. Sin existencias resultantes el costo queda en cero.
func (v Valuation) Receive(qty, unitCost decimal.Decimal) Valuation {
	total := v.Quantity.Add(qty)
	if !total.IsPositive() {
		return Valuation{Quantity: total, UnitCost: decimal.Zero}
	}
	value := v.Quantity.Mul(v.UnitCost).Add(qty.Mul(unitCost))
	return Valuation{
		Quantity: total,
		UnitCost: value.DivRound(total, entity.AmountScale),
	}
}
