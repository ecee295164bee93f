package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// SyncRuns counts orchestrated sync runs by trigger
	SyncRuns *prometheus.CounterVec
	// AccountSyncs counts per-account sync outcomes
	AccountSyncs *prometheus.CounterVec
	// AccountSyncDuration tracks per-account sync duration
	AccountSyncDuration prometheus.Histogram
	// TokenRefreshes counts token refresh attempts by outcome
	TokenRefreshes *prometheus.CounterVec
	// PagesFetched counts listing pages fetched from the platform
	PagesFetched prometheus.Counter
	// VideosUpserted counts video records written to the store
	VideosUpserted prometheus.Counter
	// AccountsInFlight tracks account syncs currently running
	AccountsInFlight prometheus.Gauge
	// RequestLatency tracks HTTP request latency by endpoint and method
	RequestLatency *prometheus.HistogramVec
	// HTTPRequestsTotal total HTTP requests
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestsInFlight current HTTP requests being processed
	HTTPRequestsInFlight prometheus.Gauge
	// registry is the custom registry for this metrics instance
	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		SyncRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total number of orchestrated sync runs",
			},
			[]string{"trigger"},
		),
		AccountSyncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_syncs_total",
				Help:      "Total number of per-account sync attempts",
			},
			[]string{"status"},
		),
		AccountSyncDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "account_sync_duration_seconds",
				Help:      "Duration of one account's sync",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
		),
		TokenRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_refreshes_total",
				Help:      "Total number of access token refresh attempts",
			},
			[]string{"status"},
		),
		PagesFetched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_fetched_total",
				Help:      "Total number of listing pages fetched",
			},
		),
		VideosUpserted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "videos_upserted_total",
				Help:      "Total number of video records upserted",
			},
		),
		AccountsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "account_syncs_in_flight",
				Help:      "Number of account syncs currently running",
			},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_latency_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"endpoint", "method", "status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"endpoint", "method", "status"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
	}

	registry.MustRegister(
		m.SyncRuns,
		m.AccountSyncs,
		m.AccountSyncDuration,
		m.TokenRefreshes,
		m.PagesFetched,
		m.VideosUpserted,
		m.AccountsInFlight,
		m.RequestLatency,
		m.HTTPRequestsTotal,
		m.HTTPRequestsInFlight,
	)

	return m
}

// Handler returns a Prometheus handler for these metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordSyncRun records an orchestrated run by trigger ("manual", "scheduled", "api")
func (m *Metrics) RecordSyncRun(trigger string) {
	m.SyncRuns.WithLabelValues(trigger).Inc()
}

// RecordAccountSync records a per-account sync outcome ("success", "partial", "auth_revoked", "transient", "not_connected")
func (m *Metrics) RecordAccountSync(status string, durationSeconds float64) {
	m.AccountSyncs.WithLabelValues(status).Inc()
	m.AccountSyncDuration.Observe(durationSeconds)
}

// RecordTokenRefresh records a token refresh attempt ("success", "revoked", "transient")
func (m *Metrics) RecordTokenRefresh(status string) {
	m.TokenRefreshes.WithLabelValues(status).Inc()
}

// RecordPageFetched records one fetched listing page
func (m *Metrics) RecordPageFetched() {
	m.PagesFetched.Inc()
}

// RecordVideosUpserted records upserted video records
func (m *Metrics) RecordVideosUpserted(n int) {
	m.VideosUpserted.Add(float64(n))
}

// IncAccountsInFlight increments the in-flight account sync gauge
func (m *Metrics) IncAccountsInFlight() {
	m.AccountsInFlight.Inc()
}

// DecAccountsInFlight decrements the in-flight account sync gauge
func (m *Metrics) DecAccountsInFlight() {
	m.AccountsInFlight.Dec()
}

// RecordRequestLatency records the latency of an HTTP request
func (m *Metrics) RecordRequestLatency(endpoint, method, status string, durationSeconds float64) {
	m.RequestLatency.WithLabelValues(endpoint, method, status).Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint, method, status string) {
	m.HTTPRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// IncHTTPRequestsInFlight increments the in-flight requests counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight decrements the in-flight requests counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
