package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the profile resolution module.
// All methods are safe on a nil receiver so tests can wire a nil Metrics.
type Metrics struct {
	// Lookup outcomes by resolution path
	Lookups *prometheus.CounterVec

	// Batched preload latency against the external source
	PreloadLatency prometheus.Histogram

	// Preload callers that attached to an already in-flight fetch
	SharedFetches prometheus.Counter

	// Currently resolved profiles held in memory
	ResolvedProfiles prometheus.Gauge
}

// New creates a new Metrics instance with all profile module metrics registered.
func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "profiled_profile_lookups_total",
			Help: "Total profile lookups by resolution path",
		}, []string{"path"}), // path: "cache", "snapshot", "fallback"

		PreloadLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "profiled_profile_preload_duration_seconds",
			Help:    "Duration of batched profile preloads against the external source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		SharedFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "profiled_profile_shared_fetches_total",
			Help: "Preload waits that attached to an in-flight fetch instead of issuing one",
		}),

		ResolvedProfiles: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "profiled_profile_resolved_profiles",
			Help: "Number of resolved profiles currently held in memory",
		}),
	}
}

// IncrementLookup records a lookup served via the given resolution path.
func (m *Metrics) IncrementLookup(path string) {
	if m != nil {
		m.Lookups.WithLabelValues(path).Inc()
	}
}

// ObservePreloadLatency records the duration of one batched preload.
func (m *Metrics) ObservePreloadLatency(d time.Duration) {
	if m != nil {
		m.PreloadLatency.Observe(d.Seconds())
	}
}

// IncrementSharedFetch records a caller attaching to an in-flight fetch.
func (m *Metrics) IncrementSharedFetch() {
	if m != nil {
		m.SharedFetches.Inc()
	}
}

// SetResolvedProfiles records the current in-memory map size.
func (m *Metrics) SetResolvedProfiles(n int) {
	if m != nil {
		m.ResolvedProfiles.Set(float64(n))
	}
}
