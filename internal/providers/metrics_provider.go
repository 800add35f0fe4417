package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"guildstore/internal/storage/interfaces"
	"guildstore/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveStorageDuration(op string, duration time.Duration)
	IncStorageErrors(op string)
	IncStorageFallbacks(reason string)
	IncEventsPublished(reason string)
	TrackStore(manager interfaces.SchemaManagerInterface)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storageDuration *prometheus.HistogramVec
	storageErrors   *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveStorageDuration(op string, duration time.Duration) {
	m.storageDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncStorageErrors(op string) {
	m.storageErrors.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) IncStorageFallbacks(reason string) {
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *MetricsProvider) IncEventsPublished(reason string) {
	m.eventsPublished.WithLabelValues(reason).Inc()
}

// TrackStore exposes the snapshot counter and listener count as gauges.
func (m *MetricsProvider) TrackStore(manager interfaces.SchemaManagerInterface) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "guildstore_snapshot",
		Help: "Current store snapshot counter",
	}, func() float64 {
		return float64(manager.GetSnapshot())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "guildstore_listeners",
		Help: "Number of registered change listeners",
	}, func() float64 {
		return float64(manager.ListenerCount())
	})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "guildstore_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guildstore_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guildstore_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guildstore_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		storageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guildstore_storage_duration_seconds",
			Help:    "Duration of key-value storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		storageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "guildstore_storage_errors_total",
			Help: "Key-value storage operations that returned an error",
		}, []string{"op"}),

		fallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "guildstore_storage_fallbacks_total",
			Help: "Loads that discarded stored data and fell back to the default document",
		}, []string{"reason"}),

		eventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "guildstore_events_published_total",
			Help: "Change events handed to the notifier",
		}, []string{"reason"}),
	}

	return m
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncStorageErrors(_ string)                        {}
func (n *noopMetrics) IncStorageFallbacks(_ string)                     {}
func (n *noopMetrics) IncEventsPublished(_ string)                      {}
func (n *noopMetrics) TrackStore(_ interfaces.SchemaManagerInterface)   {}
