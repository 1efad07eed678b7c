package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale decimales con que se persisten cantidades, precios y costos (NUMERIC(18,4)).
const AmountScale int32 = 4

// Product representa un producto del catálogo de un negocio.
// Cost es promedio ponderado calculado en cada recepción; Stock es la vista desnormalizada
// de la suma disponible en lotes activos (la mantiene el motor de inventario).
// Un producto inactivo conserva su historial pero no se puede comprar ni vender.
type Product struct {
	ID          string
	BusinessID  string
	SKU         string // código único por negocio
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal // costo promedio ponderado (inicia en 0)
	Stock       decimal.Decimal
	MinStock    decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
