package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics métricas Prometheus del motor de ventas e inventario.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SalesTotal          *prometheus.CounterVec // por resultado: completed, cancelled, refunded, rejected
	SaleAmount          prometheus.Counter
	ReceiptsTotal       *prometheus.CounterVec
	StockMovements      *prometheus.CounterVec // por tipo de movimiento
	TxDuration          *prometheus.HistogramVec
	TxConflicts         prometheus.Counter
	CircuitBreakerState *prometheus.GaugeVec
}

// Config namespace de las métricas.
type Config struct {
	Namespace string
}

// New crea un registro propio con los colectores estándar de Go y proceso.
func New(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "rollpos"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de peticiones HTTP en segundos",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.SalesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sales_total",
			Help:      "Ventas procesadas por resultado",
		},
		[]string{"result"},
	)
	m.SaleAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sales_amount_total",
			Help:      "Suma de totales de ventas completadas",
		},
	)
	m.ReceiptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "purchase_receipts_total",
			Help:      "Recepciones de órdenes de compra por resultado",
		},
		[]string{"result"},
	)
	m.StockMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de inventario registrados por tipo",
		},
		[]string{"type"},
	)
	m.TxDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "transaction_duration_seconds",
			Help:      "Duración de transacciones del motor",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
	m.TxConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "transaction_conflicts_total",
			Help:      "Transacciones abortadas por conflicto de concurrencia",
		},
	)
	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Estado del circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.SalesTotal, m.SaleAmount, m.ReceiptsTotal, m.StockMovements,
		m.TxDuration, m.TxConflicts, m.CircuitBreakerState,
	)
	return m
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registro (útil en tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordHTTPRequest registra una petición HTTP.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSale registra el resultado de una venta; amount solo suma en completed.
func (m *Metrics) RecordSale(result string, amount float64) {
	if m == nil {
		return
	}
	m.SalesTotal.WithLabelValues(result).Inc()
	if result == "completed" {
		m.SaleAmount.Add(amount)
	}
}

// RecordReceipt registra una recepción.
func (m *Metrics) RecordReceipt(result string) {
	if m == nil {
		return
	}
	m.ReceiptsTotal.WithLabelValues(result).Inc()
}

// RecordMovement cuenta un movimiento de inventario.
func (m *Metrics) RecordMovement(movementType string) {
	if m == nil {
		return
	}
	m.StockMovements.WithLabelValues(movementType).Inc()
}

// RecordTx registra la duración de una transacción y cuenta conflictos.
func (m *Metrics) RecordTx(operation string, err error, conflict bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TxDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	if conflict {
		m.TxConflicts.Inc()
	}
}

// SetCircuitBreakerState publica el estado del breaker.
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
