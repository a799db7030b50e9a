package pool

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus instruments a pool instance updates
// as it changes the bookkeeping they mirror; the updates are made
// after the pool lock is released, so a reading can briefly trail the
// pool's own accounting. A caller
// that wants them exported registers Collector() with its own
// prometheus.Registry; a pool that is never registered pays only the
// cost of a few atomic-ish counter increments.
type Metrics struct {
	usedBytes           prometheus.Gauge
	cachedBytes         prometheus.Gauge
	nativeAllocsTotal   prometheus.Counter
	nativeReleasesTotal prometheus.Counter
	reclaimedBytesTotal prometheus.Counter
	ladderStepTotal     *prometheus.CounterVec
	allocationsFailed   prometheus.Counter
}

// NewMetrics creates a fresh, unregistered Metrics set. namespace is
// typically the embedding application's name; subsystem distinguishes
// multiple pool instances (e.g. "binned_pool", "simple_pool").
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		usedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "used_bytes",
			Help: "Bytes currently checked out to callers.",
		}),
		cachedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "cached_bytes",
			Help: "Bytes held in the available free lists.",
		}),
		nativeAllocsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "native_allocs_total",
			Help: "Calls made to the external Allocator.Alloc primitive.",
		}),
		nativeReleasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "native_releases_total",
			Help: "Calls made to the external Allocator.Release primitive.",
		}),
		reclaimedBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "reclaimed_bytes_total",
			Help: "Cumulative bytes returned to the native allocator, by reclaim or by freeing an oversize block.",
		}),
		ladderStepTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "ladder_step_total",
			Help: "Escalation ladder steps taken, by step name.",
		}, []string{"step"}),
		allocationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "allocations_failed_total",
			Help: "Alloc calls that exhausted the full escalation ladder.",
		}),
	}
}

// Collector returns the prometheus collectors backing m, for
// registration with a prometheus.Registerer.
func (m *Metrics) Collector() []prometheus.Collector {
	return []prometheus.Collector{
		m.usedBytes, m.cachedBytes, m.nativeAllocsTotal, m.nativeReleasesTotal,
		m.reclaimedBytesTotal, m.ladderStepTotal, m.allocationsFailed,
	}
}

func (m *Metrics) step(name string) {
	if m == nil {
		return
	}
	m.ladderStepTotal.WithLabelValues(name).Inc()
}

func (m *Metrics) nativeAlloc() {
	if m == nil {
		return
	}
	m.nativeAllocsTotal.Inc()
}

func (m *Metrics) nativeRelease(n uintptr) {
	if m == nil {
		return
	}
	m.nativeReleasesTotal.Inc()
	m.reclaimedBytesTotal.Add(float64(n))
}

func (m *Metrics) failed() {
	if m == nil {
		return
	}
	m.allocationsFailed.Inc()
}

func (m *Metrics) setUsage(used, cached uintptr) {
	if m == nil {
		return
	}
	m.usedBytes.Set(float64(used))
	m.cachedBytes.Set(float64(cached))
}
