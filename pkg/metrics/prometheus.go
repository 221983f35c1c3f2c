// Package metrics provides Prometheus metrics for the play-by-play engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Stream metrics - what the normalizer saw.
	eventsNormalized prometheus.Counter
	eventsMalformed  prometheus.Counter

	// Reduction metrics - aggregator and lineup tracker output.
	snapshotRows         prometheus.Counter
	shotsClassified      prometheus.Counter
	unknownPlayers       prometheus.Counter
	invalidSubstitutions prometheus.Counter

	// Batch metrics - per-game outcomes.
	gamesProcessed  prometheus.Counter
	gamesFailed     prometheus.Counter
	gameProcessing  prometheus.Histogram
	sinkWrite       prometheus.Histogram
	sinkWriteErrors prometheus.Counter

	// Operational health metrics.
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	queueDequeues    prometheus.Counter
	workerCount      prometheus.Gauge
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
		namespace:        "courtlytics",
		subsystem:        "pbp",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_normalized_total",
		Help:      "Total raw events normalized into the canonical stream",
	})
	m.eventsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_malformed_total",
		Help:      "Total raw events skipped as malformed (data quality)",
	})
	m.snapshotRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rows_total",
		Help:      "Total sparse snapshot rows emitted by the aggregator",
	})
	m.shotsClassified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shots_classified_total",
		Help:      "Total shot events spatially classified",
	})
	m.unknownPlayers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unknown_player_references_total",
		Help:      "Total roster stubs created for unknown player references",
	})
	m.invalidSubstitutions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invalid_substitutions_total",
		Help:      "Total substitutions that degraded a team lineup to unknown",
	})
	m.gamesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_processed_total",
		Help:      "Total games reduced to completion",
	})
	m.gamesFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_failed_total",
		Help:      "Total games aborted by a fatal stream error",
	})
	m.gameProcessing = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_processing_seconds",
		Help:      "Wall time to reduce one game's event stream",
		Buckets:   m.histogramBuckets,
	})
	m.sinkWrite = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_write_seconds",
		Help:      "Wall time to persist one game's result",
		Buckets:   m.histogramBuckets,
	})
	m.sinkWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_write_errors_total",
		Help:      "Total failed sink writes (retried by the caller)",
	})
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued game jobs",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured game job queue capacity",
	})
	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue size over capacity (0..1)",
	})
	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total game jobs accepted by the queue",
	})
	m.queueEnqueueErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total game jobs rejected by the queue",
	})
	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total game jobs handed to workers",
	})
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of game workers in the pool",
	})
}

// Handler exposes the custom registry for a metrics-only HTTP listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Package-level recording helpers on the global manager.

func RecordEventNormalized() { globalManager.eventsNormalized.Inc() }
func RecordEventMalformed()  { globalManager.eventsMalformed.Inc() }
func RecordSnapshotRow()     { globalManager.snapshotRows.Inc() }
func RecordShotClassified()  { globalManager.shotsClassified.Inc() }

func RecordUnknownPlayer()        { globalManager.unknownPlayers.Inc() }
func RecordInvalidSubstitution()  { globalManager.invalidSubstitutions.Inc() }
func RecordGameProcessed()        { globalManager.gamesProcessed.Inc() }
func RecordGameFailed()           { globalManager.gamesFailed.Inc() }
func RecordGameSeconds(s float64) { globalManager.gameProcessing.Observe(s) }

func RecordSinkWriteSeconds(s float64) { globalManager.sinkWrite.Observe(s) }
func RecordSinkWriteError()            { globalManager.sinkWriteErrors.Inc() }

func RecordQueueEnqueue()      { globalManager.queueEnqueues.Inc() }
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrs.Inc() }
func RecordQueueDequeue()      { globalManager.queueDequeues.Inc() }

func UpdateQueueSize(n int)            { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)        { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }
func UpdateWorkerCount(n int)          { globalManager.workerCount.Set(float64(n)) }
