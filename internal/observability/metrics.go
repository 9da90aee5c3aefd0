package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the stock service.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bulkReplace     *prometheus.CounterVec
	importedRows    prometheus.Counter
	exports         prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stok_http_requests_total",
		Help: "HTTP istek sayısı (route ve status bazında).",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stok_http_request_duration_seconds",
		Help:    "Route bazında HTTP istek süresi.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	bulkReplace := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stok_bulk_replace_total",
		Help: "Toplu değiştirme işlemleri (bitiş durumuna göre).",
	}, []string{"state"})
	importedRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stok_import_rows_total",
		Help: "Excel dosyalarından okunan satır sayısı.",
	})
	exports := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stok_exports_total",
		Help: "Oluşturulan Excel dışa aktarım sayısı.",
	})
	registry.MustRegister(requests, duration, bulkReplace, importedRows, exports)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		bulkReplace:     bulkReplace,
		importedRows:    importedRows,
		exports:         exports,
	}
}

// Handler returns the /metrics http.Handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) ObserveBulkReplace(state string) {
	if m == nil {
		return
	}
	m.bulkReplace.WithLabelValues(state).Inc()
}

func (m *Metrics) AddImportedRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importedRows.Add(float64(n))
}

func (m *Metrics) IncExports() {
	if m == nil {
		return
	}
	m.exports.Inc()
}
