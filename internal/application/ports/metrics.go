package ports

import "github.com/shopspring/decimal"

// MetricsRecorder contadores del motor de inventario y de los ciclos de vida.
type MetricsRecorder interface {
	LotsCreated(n int)
	StockConsumed(qty decimal.Decimal)
	ShortageReported(qty decimal.Decimal)
	LotsExpired(n int)
	Transition(entity, to string)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) LotsCreated(int)                  {}
func (NopMetrics) StockConsumed(decimal.Decimal)    {}
func (NopMetrics) ShortageReported(decimal.Decimal) {}
func (NopMetrics) LotsExpired(int)                  {}
func (NopMetrics) Transition(string, string)        {}
