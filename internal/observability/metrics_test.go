package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestDomainCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveBulkReplace("completed")
	m.ObserveBulkReplace("completed")
	m.ObserveBulkReplace("error_partial")
	m.AddImportedRows(5)
	m.AddImportedRows(0)
	m.IncExports()

	require.Equal(t, 2.0, testutil.ToFloat64(m.bulkReplace.WithLabelValues("completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.bulkReplace.WithLabelValues("error_partial")))
	require.Equal(t, 5.0, testutil.ToFloat64(m.importedRows))
	require.Equal(t, 1.0, testutil.ToFloat64(m.exports))

	body := scrape(t, m)
	require.Contains(t, body, `stok_bulk_replace_total{state="completed"} 2`)
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/stocks/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "yok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/stocks/42", nil))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := scrape(t, m)
	require.True(t, strings.Contains(body, `stok_http_requests_total{code="404",route="/api/stocks/:id"} 1`), body)
	require.Contains(t, body, `stok_http_request_duration_seconds_bucket{route="/api/stocks/:id"`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveBulkReplace("completed")
	m.AddImportedRows(3)
	m.IncExports()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
