// ============================================================================
// METRICS - TransitCL
// ============================================================================
// Colector Prometheus con registro propio. Se expone en un listener
// HTTP separado del API (METRICS_ADDR) para no mezclar tráfico de
// scraping con tráfico de clientes.
// ============================================================================

package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec // labels: route, status

	PlannerRequests  prometheus.Counter
	PlannerNoResults prometheus.Counter
	PlannerDuration  prometheus.Histogram

	ChainFallbacks prometheus.Counter

	DeviationChecks *prometheus.CounterVec // label: status

	WSClients prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitcl_http_requests_total",
			Help: "Total HTTP requests served by the API.",
		}, []string{"route", "status"}),
		PlannerRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitcl_planner_requests_total",
			Help: "Total itinerary planning requests.",
		}),
		PlannerNoResults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitcl_planner_no_results_total",
			Help: "Planning requests that produced zero itineraries.",
		}),
		PlannerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transitcl_planner_duration_seconds",
			Help:    "Duration of itinerary graph searches.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		ChainFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitcl_chain_fallbacks_total",
			Help: "Linked sequences that degraded to id-sorted order.",
		}),
		DeviationChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitcl_deviation_checks_total",
			Help: "Trip deviation evaluations by resulting status.",
		}, []string{"status"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transitcl_ws_dispatch_clients",
			Help: "Connected dispatch monitor WebSocket clients.",
		}),
	}

	reg.MustRegister(
		c.HTTPRequests,
		c.PlannerRequests, c.PlannerNoResults, c.PlannerDuration,
		c.ChainFallbacks,
		c.DeviationChecks,
		c.WSClients,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve levanta el servidor HTTP de /metrics en la dirección dada
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ servidor de métricas: %v", err)
		}
	}()
	log.Printf("📈 Métricas Prometheus en %s/metrics", addr)
	return srv
}
