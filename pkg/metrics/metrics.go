// Package metrics provides Prometheus metrics for the huck stats service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns the metric vectors on a private registry so tests can
// create isolated instances.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Ingestion
	eventsIngested  prometheus.Counter
	eventsDuplicate prometheus.Counter

	// Queue
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge

	// Workers
	workerCount  prometheus.Gauge
	workerErrors prometheus.Counter

	// Store
	storeWriteLatency prometheus.Histogram
	storeQueryLatency prometheus.Histogram
	gamesTracked      prometheus.Gauge
	eventsStored      prometheus.Gauge

	// Aggregation engine
	aggregationLatency prometheus.Histogram
	aggregationErrors  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
}

// defaultLatencyBuckets covers sub-millisecond store hits through slow
// multi-second aggregations.
var defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// NewManager creates a Manager with all metrics registered on its own
// registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "huck",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	m.eventsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "events_ingested_total",
		Help: "Events accepted for persistence.",
	})
	m.eventsDuplicate = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "events_duplicate_total",
		Help: "Events rejected as duplicates by the idempotency cache.",
	})

	m.queueEnqueues = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queue_enqueues_total",
		Help: "Successful queue enqueues.",
	})
	m.queueDequeues = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queue_dequeues_total",
		Help: "Events handed to workers.",
	})
	m.queueEnqueueErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queue_enqueue_errors_total",
		Help: "Enqueue attempts rejected (full, closed, or cancelled).",
	})
	m.queueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "queue_size",
		Help: "Events currently queued.",
	})
	m.queueCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "queue_capacity",
		Help: "Configured queue capacity.",
	})
	m.queueUtilization = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "queue_utilization",
		Help: "Queue fill ratio between 0 and 1.",
	})

	m.workerCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "worker_count",
		Help: "Running persistence workers.",
	})
	m.workerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "worker_errors_total",
		Help: "Worker-side persistence failures.",
	})

	m.storeWriteLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: "store_write_latency_ms",
		Help:    "Store write latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	})
	m.storeQueryLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: "store_query_latency_ms",
		Help:    "Store query latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	})
	m.gamesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "games_tracked",
		Help: "Games currently in the store.",
	})
	m.eventsStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "events_stored",
		Help: "Events currently in the store.",
	})

	m.aggregationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: "aggregation_latency_ms",
		Help:    "Statistics aggregation latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	})
	m.aggregationErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "aggregation_errors_total",
		Help: "Aggregation calls rejected for malformed input.",
	})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: defaultLatencyBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemory = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "system_memory_bytes",
		Help: "Heap bytes currently allocated.",
	})
	m.systemGoroutines = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "system_goroutines",
		Help: "Live goroutine count.",
	})

	m.registry.MustRegister(
		m.eventsIngested, m.eventsDuplicate,
		m.queueEnqueues, m.queueDequeues, m.queueEnqueueErrors,
		m.queueSize, m.queueCapacity, m.queueUtilization,
		m.workerCount, m.workerErrors,
		m.storeWriteLatency, m.storeQueryLatency,
		m.gamesTracked, m.eventsStored,
		m.aggregationLatency, m.aggregationErrors,
		m.httpRequests, m.httpRequestDuration,
		m.systemMemory, m.systemGoroutines,
	)
}

// Registry exposes the manager's registry for exposition handlers.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

var global = NewManager()

// GetRegistry returns the global metrics registry.
func GetRegistry() *prometheus.Registry {
	return global.registry
}

// Package-level recording helpers against the global manager.

func RecordEventIngested()  { global.eventsIngested.Inc() }
func RecordEventDuplicate() { global.eventsDuplicate.Inc() }

func RecordQueueEnqueue()              { global.queueEnqueues.Inc() }
func RecordQueueDequeue()              { global.queueDequeues.Inc() }
func RecordQueueEnqueueError()         { global.queueEnqueueErrors.Inc() }
func UpdateQueueSize(size int)         { global.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { global.queueCapacity.Set(float64(capacity)) }
func UpdateQueueUtilization(r float64) { global.queueUtilization.Set(r) }

func UpdateWorkerCount(count int) { global.workerCount.Set(float64(count)) }
func RecordWorkerError()          { global.workerErrors.Inc() }

func RecordStoreWriteLatency(ms float64) { global.storeWriteLatency.Observe(ms) }
func RecordStoreQueryLatency(ms float64) { global.storeQueryLatency.Observe(ms) }
func UpdateGamesTracked(count int)       { global.gamesTracked.Set(float64(count)) }
func UpdateEventsStored(count int)       { global.eventsStored.Set(float64(count)) }

func RecordAggregationLatency(ms float64) { global.aggregationLatency.Observe(ms) }
func RecordAggregationError()             { global.aggregationErrors.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	global.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	global.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func UpdateSystemMemoryUsage(bytes uint64) { global.systemMemory.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int) { global.systemGoroutines.Set(float64(count)) }
