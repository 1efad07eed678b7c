package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain/inventory"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

// SystemUser responsable por defecto de los movimientos generados por el motor.
const SystemUser = "system"

// Engine motor de integración de inventario: crea lotes desde compras recibidas, consume lotes
// FIFO para ventas y reconcilia el stock agregado de cada producto.
// Toda operación de varios pasos corre dentro de una unidad de trabajo (TxRunner); las variantes
// ...InTx reciben los repositorios del caller para componerse en su misma transacción.
type Engine struct {
	txRunner   ports.TxRunner
	lotNumbers *inventory.LotNumberGenerator
	cache      ports.StockCache
	metrics    ports.MetricsRecorder
	log        *logger.Logger
	now        func() time.Time
	newID      func() string
}

// Option configura el Engine.
type Option func(*Engine)

// WithStockCache habilita la cache de vistas de stock.
func WithStockCache(c ports.StockCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics registra contadores del motor.
func WithMetrics(m ports.MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithLotNumberGenerator reemplaza el generador de números de lote.
func WithLotNumberGenerator(g *inventory.LotNumberGenerator) Option {
	return func(e *Engine) { e.lotNumbers = g }
}

// WithClock inyecta el reloj.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator inyecta el generador de IDs.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine construye el motor.
func NewEngine(txRunner ports.TxRunner, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		txRunner: txRunner,
		metrics:  ports.NopMetrics{},
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lotNumbers == nil {
		e.lotNumbers = inventory.NewLotNumberGeneratorWith(e.now, nil)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	return e
}

// Now reloj del motor (compartido con los gestores de compras y ventas).
func (e *Engine) Now() time.Time { return e.now() }

// NewID genera un identificador con el generador del motor.
func (e *Engine) NewID() string { return e.newID() }

// PublishSnapshots refresca la cache con vistas ya confirmadas. Debe llamarse después del commit;
// un fallo de cache solo se registra en el log.
func (e *Engine) PublishSnapshots(ctx context.Context, snapshots ...ports.StockSnapshot) {
	if e.cache == nil {
		return
	}
	for _, s := range snapshots {
		if err := e.cache.Set(ctx, s); err != nil {
			e.log.Warn().Err(err).Str("product_id", s.ProductID).Msg("no se pudo actualizar la cache de stock")
		}
	}
}
