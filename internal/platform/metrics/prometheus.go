// Package metrics provides Prometheus metrics for the club portal.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the portal's collectors. A nil *Manager is valid and records nothing,
// which keeps call sites free of nil checks in tests.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	statusLookups      *prometheus.CounterVec
	statusStaleResults prometheus.Counter

	mutations         *prometheus.CounterVec
	mutationDuration  *prometheus.HistogramVec
	mutationsInFlight prometheus.Gauge

	feedFetches *prometheus.CounterVec

	viewSessions prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager registered against its own registry unless one is supplied.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		namespace:        "clubportal",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if err := m.initializeMetrics(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initializeMetrics() error {
	m.statusLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "status_lookups_total",
		Help:      "Existence lookups issued by the status resolver, by relation and result.",
	}, []string{"relation", "result"})
	m.statusStaleResults = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "status_stale_results_total",
		Help:      "Resolver results discarded because a newer resolve was initiated.",
	})
	m.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutations_total",
		Help:      "Mutation outcomes by kind, result and code.",
	}, []string{"kind", "result", "code"})
	m.mutationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutation_duration_seconds",
		Help:      "Backend write latency of mutations.",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})
	m.mutationsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mutations_in_flight",
		Help:      "Mutations currently holding an in-flight guard key.",
	})
	m.feedFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_fetches_total",
		Help:      "Notification feed reads by branch and result.",
	}, []string{"branch", "result"})
	m.viewSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "view_sessions",
		Help:      "Live viewer sessions held in memory.",
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	for _, c := range []prometheus.Collector{
		m.statusLookups, m.statusStaleResults,
		m.mutations, m.mutationDuration, m.mutationsInFlight,
		m.feedFetches, m.viewSessions,
		m.httpRequests, m.httpRequestDuration,
	} {
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("%w: %v", ErrRegisterFailed, err)
		}
	}
	return nil
}

func (m *Manager) on() bool { return m != nil && m.enabled }

// Handler serves the manager's registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Manager) RecordStatusLookup(relation, result string) {
	if !m.on() {
		return
	}
	m.statusLookups.WithLabelValues(relation, result).Inc()
}

func (m *Manager) RecordStaleStatus() {
	if !m.on() {
		return
	}
	m.statusStaleResults.Inc()
}

func (m *Manager) RecordMutation(kind, result, code string, d time.Duration) {
	if !m.on() {
		return
	}
	m.mutations.WithLabelValues(kind, result, code).Inc()
	if d > 0 {
		m.mutationDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Manager) SetMutationsInFlight(n int64) {
	if !m.on() {
		return
	}
	m.mutationsInFlight.Set(float64(n))
}

func (m *Manager) RecordFeedFetch(branch, result string) {
	if !m.on() {
		return
	}
	m.feedFetches.WithLabelValues(branch, result).Inc()
}

func (m *Manager) SetViewSessions(n int) {
	if !m.on() {
		return
	}
	m.viewSessions.Set(float64(n))
}

func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if !m.on() {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
