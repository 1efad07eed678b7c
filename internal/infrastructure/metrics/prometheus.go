package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var _ ports.MetricsRecorder = (*Recorder)(nil)

// Recorder contadores Prometheus del motor de inventario y de las transiciones de compras y ventas.
type Recorder struct {
	lotsCreated    prometheus.Counter
	lotsExpired    prometheus.Counter
	stockConsumed  prometheus.Counter
	shortage       prometheus.Counter
	transitions    *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewRecorder registra las métricas en reg (prometheus.DefaultRegisterer en producción, un registro propio en pruebas).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		lotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "negocio_inventory_lots_created_total",
			Help: "Lotes creados por recepción de compras",
		}),
		lotsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "negocio_inventory_lots_expired_total",
			Help: "Lotes marcados como vencidos",
		}),
		stockConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "negocio_inventory_units_consumed_total",
			Help: "Unidades consumidas de lotes por ventas",
		}),
		shortage: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "negocio_inventory_units_short_total",
			Help: "Unidades solicitadas sin stock disponible",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "negocio_status_transitions_total",
			Help: "Transiciones de estado aplicadas",
		}, []string{"entity", "to"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "negocio_http_requests_total",
			Help: "Peticiones HTTP atendidas",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "negocio_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(r.lotsCreated, r.lotsExpired, r.stockConsumed, r.shortage, r.transitions, r.requests, r.requestLatency)
	return r
}

func (r *Recorder) LotsCreated(n int) { r.lotsCreated.Add(float64(n)) }
func (r *Recorder) LotsExpired(n int) { r.lotsExpired.Add(float64(n)) }

func (r *Recorder) StockConsumed(qty decimal.Decimal) {
	if qty.IsPositive() {
		r.stockConsumed.Add(qty.InexactFloat64())
	}
}

func (r *Recorder) ShortageReported(qty decimal.Decimal) {
	if qty.IsPositive() {
		r.shortage.Add(qty.InexactFloat64())
	}
}

func (r *Recorder) Transition(entity, to string) {
	r.transitions.WithLabelValues(entity, to).Inc()
}

// Middleware mide cada petición por ruta registrada (no por path crudo, para acotar la cardinalidad).
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		r.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		r.requestLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
