package authkit

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter.
type MetricID uint8

const (
	// MetricLoginSuccess counts logins that issued a token pair.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins, whatever the reason.
	MetricLoginFailure
	// MetricRefreshSuccess counts refresh calls that minted a token.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh tokens.
	MetricRefreshFailure
	// MetricValidateSuccess counts accepted access tokens.
	MetricValidateSuccess
	// MetricValidateRevoked counts well-signed tokens the registry no
	// longer knows.
	MetricValidateRevoked
	// MetricValidateFailure counts tokens rejected before the registry
	// check.
	MetricValidateFailure
	// MetricLogout counts logout calls.
	MetricLogout
	// MetricValidateLatency is the histogram id for Validate wall time.
	MetricValidateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps hot counters on separate cache lines.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// MetricsConfig switches the counters and the latency histogram on.
type MetricsConfig struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics is a fixed set of lock-free counters over the engine flows. All
// methods are safe on a nil receiver and under concurrency.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters. Histogram
// buckets are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns a Metrics per cfg. A disabled Metrics is inert but
// still safe to call.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a Validate latency sample. Only MetricValidateLatency
// carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricValidateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram atomically per cell. The
// snapshot is not a consistent cut across counters; it is close enough
// for scraping.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		s.Histograms[MetricValidateLatency] = buckets
	}
	return s
}

// bucketIndex maps a duration to the fixed 5ms..500ms bucket ladder.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()
	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
