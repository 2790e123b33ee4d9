package authgate

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginLocked
	MetricRegisterSuccess
	MetricRegisterConflict
	MetricRefreshSuccess
	MetricRefreshExpired
	MetricLogout
	MetricTokenInvalid
	metricCount
)

// Metrics is a fixed set of lock-free counters maintained by the engine.
// Snapshot is safe to call concurrently with updates.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

// Inc increments a counter. Unknown IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns the current counter values keyed by MetricID.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, metricCount)
	if m == nil {
		return out
	}
	for id := MetricID(0); id < metricCount; id++ {
		out[id] = m.counters[id].Load()
	}
	return out
}
