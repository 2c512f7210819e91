package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	hotspotRuns       *prometheus.CounterVec
	hotspotCells      prometheus.Histogram
	hotspotRecords    prometheus.Histogram
	incidentsImported prometheus.Counter
	modelLookups      *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patroliq_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patroliq_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		hotspotRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patroliq_hotspot_computations_total",
			Help: "Hotspot computations by outcome.",
		}, []string{"outcome"}),
		hotspotCells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "patroliq_hotspot_cells",
			Help:    "Number of (geo, temporal) cells scored per computation.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		hotspotRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "patroliq_hotspot_records",
			Help:    "Number of incident records scored per computation.",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7),
		}),
		incidentsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patroliq_incidents_imported_total",
			Help: "Incidents written by dataset imports.",
		}),
		modelLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patroliq_model_lookups_total",
			Help: "Registry model lookups by model name and outcome.",
		}, []string{"model", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.hotspotRuns,
		m.hotspotCells,
		m.hotspotRecords,
		m.incidentsImported,
		m.modelLookups,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served request under its route template
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// HotspotComputed records a successful hotspot computation
func (m *Metrics) HotspotComputed(records, cells int) {
	if m == nil {
		return
	}
	m.hotspotRuns.WithLabelValues("ok").Inc()
	m.hotspotRecords.Observe(float64(records))
	m.hotspotCells.Observe(float64(cells))
}

// HotspotFailed counts a hotspot computation that returned an error
func (m *Metrics) HotspotFailed() {
	if m == nil {
		return
	}
	m.hotspotRuns.WithLabelValues("error").Inc()
}

// IncidentsImported adds n to the imported incident counter
func (m *Metrics) IncidentsImported(n int) {
	if m == nil {
		return
	}
	m.incidentsImported.Add(float64(n))
}

// ModelLookup counts a registry lookup by model and outcome
func (m *Metrics) ModelLookup(model string, found bool) {
	if m == nil {
		return
	}
	outcome := "found"
	if !found {
		outcome = "missing"
	}
	m.modelLookups.WithLabelValues(model, outcome).Inc()
}
