// Package metrics expone métricas Prometheus de los cierres de caja y de la API HTTP.
package metrics

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
)

const namespace = "clinica"

var _ ports.ClosingMetrics = (*Metrics)(nil)

// Metrics colectores de la aplicación sobre un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	closings     *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	variance     *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registra los colectores (incluye runtime de Go y proceso).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		closings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cierres",
				Name:      "operations_total",
				Help:      "Operaciones de cierre confirmadas por serie y acción.",
			},
			[]string{"series", "action"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cierres",
				Name:      "rejected_total",
				Help:      "Operaciones de cierre rechazadas por motivo.",
			},
			[]string{"series", "action", "reason"},
		),
		variance: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "cierres",
				Name:      "variance_abs",
				Help:      "Diferencia absoluta entre contado y calculado al cerrar.",
				Buckets:   []float64{0, 500, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"series"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Peticiones HTTP atendidas.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duración de las peticiones HTTP.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(
		m.closings, m.rejected, m.variance, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveClosing cuenta una operación confirmada; en los cierres registra además la diferencia.
func (m *Metrics) ObserveClosing(series, action string, variance float64) {
	m.closings.WithLabelValues(series, action).Inc()
	if action == "close" {
		m.variance.WithLabelValues(series).Observe(math.Abs(variance))
	}
}

// ObserveRejected cuenta una operación rechazada.
func (m *Metrics) ObserveRejected(series, action, reason string) {
	m.rejected.WithLabelValues(series, action, reason).Inc()
}

// Handler sirve /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware mide cada petición con la ruta registrada (no la URL) para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
