// Package metrics provides Prometheus metrics for the coordinator service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the coordinator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Fleet registry
	instancesLive         prometheus.Gauge
	instanceRegistrations prometheus.Counter
	instanceEvictions     prometheus.Counter

	// Sessions
	sessionsActive    prometheus.Gauge
	sessionCreations  prometheus.Counter
	sessionEvictions  prometheus.Counter
	sessionRejections prometheus.Counter

	// Leaderboard and fun facts
	leaderboardUpdates prometheus.Counter
	leaderboardResets  prometheus.Counter

	// Match report pipeline
	matchReports      prometheus.Counter
	matchDuplicates   prometheus.Counter
	mergeErrors       prometheus.Counter
	mergeLatency      prometheus.Histogram
	reportQueueSize   prometheus.Gauge
	reportQueueErrors prometheus.Counter

	// Auth boundary
	authDrops prometheus.Counter

	// Background sweeps
	sweepDuration *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "takepoint",
		subsystem:        "coordinator",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.instancesLive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "instances_live",
		Help: "Number of game server instances currently registered.",
	})
	m.instanceRegistrations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "instance_registrations_total",
		Help: "Total instance registration and heartbeat calls accepted.",
	})
	m.instanceEvictions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "instance_evictions_total",
		Help: "Total instances evicted by the TTL sweep.",
	})

	m.sessionsActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sessions_active",
		Help: "Number of accounts with an active session.",
	})
	m.sessionCreations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "session_creations_total",
		Help: "Total sessions created.",
	})
	m.sessionEvictions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "session_evictions_total",
		Help: "Total sessions evicted by the TTL sweep.",
	})
	m.sessionRejections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "session_rejections_total",
		Help: "Total logins rejected because a session was already active.",
	})

	m.leaderboardUpdates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "leaderboard_updates_total",
		Help: "Total leaderboard entries inserted or replaced.",
	})
	m.leaderboardResets = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "leaderboard_resets_total",
		Help: "Total daily leaderboard resets.",
	})

	m.matchReports = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "match_reports_total",
		Help: "Total match reports accepted for merging.",
	})
	m.matchDuplicates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "match_report_duplicates_total",
		Help: "Total match reports dropped as duplicates.",
	})
	m.mergeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "merge_errors_total",
		Help: "Total profile merges that failed.",
	})
	m.mergeLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "merge_latency_ms",
		Help:    "Latency of the load-merge-save cycle in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.reportQueueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "report_queue_size",
		Help: "Current number of queued match reports.",
	})
	m.reportQueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "report_queue_errors_total",
		Help: "Total match reports rejected by the queue.",
	})

	m.authDrops = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "auth_drops_total",
		Help: "Total requests silently dropped for credential mismatch.",
	})

	m.sweepDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "sweep_duration_ms",
		Help:    "Duration of background sweeps in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"component"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method"})

	return m
}

// Handler returns an http.Handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Package-level helpers delegating to the global manager.

func UpdateInstancesLive(n int)      { globalManager.instancesLive.Set(float64(n)) }
func RecordInstanceRegistration()    { globalManager.instanceRegistrations.Inc() }
func RecordInstanceEvictions(n int)  { globalManager.instanceEvictions.Add(float64(n)) }
func UpdateSessionsActive(n int)     { globalManager.sessionsActive.Set(float64(n)) }
func RecordSessionCreation()         { globalManager.sessionCreations.Inc() }
func RecordSessionEvictions(n int)   { globalManager.sessionEvictions.Add(float64(n)) }
func RecordSessionRejection()        { globalManager.sessionRejections.Inc() }
func RecordLeaderboardUpdate()       { globalManager.leaderboardUpdates.Inc() }
func RecordLeaderboardReset()        { globalManager.leaderboardResets.Inc() }
func RecordMatchReport()             { globalManager.matchReports.Inc() }
func RecordMatchDuplicate()          { globalManager.matchDuplicates.Inc() }
func RecordMergeError()              { globalManager.mergeErrors.Inc() }
func RecordMergeLatency(ms float64)  { globalManager.mergeLatency.Observe(ms) }
func UpdateReportQueueSize(n int)    { globalManager.reportQueueSize.Set(float64(n)) }
func RecordReportQueueError()        { globalManager.reportQueueErrors.Inc() }
func RecordAuthDrop()                { globalManager.authDrops.Inc() }

// RecordSweepDuration records one background sweep pass for a component.
func RecordSweepDuration(component string, ms float64) {
	globalManager.sweepDuration.WithLabelValues(component).Observe(ms)
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records the latency of a completed HTTP request.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}
