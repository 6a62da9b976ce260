// Package metrics holds the Prometheus collectors exported by derivx.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "derivx"

// Metrics is the collector set. Each instance owns its registry so tests
// and multiple servers do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// OHLCV cache
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	SeriesLoads *prometheus.CounterVec

	// Calculations by kind: option, greeks, strategy, volatility.
	CalculationsTotal *prometheus.CounterVec
	WSClients         prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ohlcv_cache",
			Name:      "hits_total",
			Help:      "OHLCV cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ohlcv_cache",
			Name:      "misses_total",
			Help:      "OHLCV cache misses",
		}),
		SeriesLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ohlcv",
			Name:      "loads_total",
			Help:      "OHLCV file loads by result",
		}, []string{"result"}),
		CalculationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Pricing and volatility calculations served",
		}, []string{"kind"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected WebSocket clients",
		}),
	}
	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CacheHits,
		m.CacheMisses,
		m.SeriesLoads,
		m.CalculationsTotal,
		m.WSClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCalculation counts one calculation of the given kind. Safe on nil.
func (m *Metrics) ObserveCalculation(kind string) {
	if m == nil {
		return
	}
	m.CalculationsTotal.WithLabelValues(kind).Inc()
}

// ObserveCache records a cache lookup. Safe on nil.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// ObserveLoad records a file load result: "ok", "not_found" or "error". Safe on nil.
func (m *Metrics) ObserveLoad(result string) {
	if m == nil {
		return
	}
	m.SeriesLoads.WithLabelValues(result).Inc()
}
