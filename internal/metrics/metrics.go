// Package metrics exposes request, render and cache counters plus the latest dataset
// volumes in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paydash/internal/core"
)

const namespace = "paydash"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	renders        *prometheus.CounterVec
	renderSeconds  *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	volumes        *prometheus.GaugeVec
	growthFailures prometheus.Counter
}

// New registers every collector, including the Go runtime and process collectors.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart images drawn, by chart, format and outcome.",
		}, []string{"chart", "format", "outcome"}),
		renderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent drawing one chart image.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"chart", "format"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_cache_lookups_total",
			Help:      "Rendered chart cache lookups by result.",
		}, []string{"result"}),
		volumes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_volume_billions",
			Help:      "Volume of each metric in the most recent dataset year.",
		}, []string{"metric"}),
		growthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "growth_failures_total",
			Help:      "Dashboard builds where growth rates could not be computed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestSeconds, m.renders, m.renderSeconds,
		m.cacheLookups, m.volumes, m.growthFailures,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "register prometheus metric")
		}
	}
	return m, nil
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestSeconds.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRender records one chart draw.
func (m *Metrics) ObserveRender(chart, format string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.renders.WithLabelValues(chart, format, outcome).Inc()
	m.renderSeconds.WithLabelValues(chart, format).Observe(d.Seconds())
}

// CacheLookup satisfies cache.Observer.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// GrowthFailed counts a dashboard built without growth rates.
func (m *Metrics) GrowthFailed() {
	m.growthFailures.Inc()
}

// SetDataset publishes the latest year's volumes.
func (m *Metrics) SetDataset(ds core.Dataset) {
	latest, ok := ds.Latest()
	if !ok {
		return
	}
	for _, metric := range core.Metrics() {
		m.volumes.WithLabelValues(metric.Slug()).Set(latest.Value(metric))
	}
}
