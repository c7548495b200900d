package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yourorg/transitcl/internal/metrics"
)

func newMeteredApp(col *metrics.Collector) *fiber.App {
	app := fiber.New()
	app.Use(Metrics(col))
	app.Get("/api/routes/:id/stops", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestMetricsCountsRequestsByRouteAndStatus(t *testing.T) {
	col := metrics.NewCollector()
	app := newMeteredApp(col)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/routes/42/stops", nil))
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
	}

	// La etiqueta route usa el patrón registrado, no el ID concreto
	got := testutil.ToFloat64(col.HTTPRequests.WithLabelValues("/api/routes/:id/stops", "200"))
	if got != 3 {
		t.Errorf("Expected 3 requests counted, got %v", got)
	}
}

func TestMetricsCountsErrorStatus(t *testing.T) {
	col := metrics.NewCollector()
	app := newMeteredApp(col)

	resp, err := app.Test(httptest.NewRequest("GET", "/no-existe", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
	got := testutil.ToFloat64(col.HTTPRequests.WithLabelValues("/", "404"))
	if got != 1 {
		t.Errorf("Expected 1 request counted with status 404, got %v", got)
	}
}

func TestMetricsNilCollectorPassesThrough(t *testing.T) {
	app := newMeteredApp(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/routes/1/stops", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
