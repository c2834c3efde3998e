package observability

import (
	"sort"
	"sync"
)

// Metrics provides basic in-memory counters keyed by operation name.
type Metrics struct {
	mu         sync.Mutex
	opCount    map[string]int64
	errorCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		opCount:    make(map[string]int64),
		errorCount: make(map[string]int64),
	}
}

// Incr adds n to the counter for op.
func (m *Metrics) Incr(op string, n int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opCount[op] += n
}

// RecordError increments error counters.
func (m *Metrics) RecordError(op, code string) {
	if m == nil {
		return
	}
	key := op + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Counter is one named value in a Snapshot.
type Counter struct {
	Name  string
	Value int64
}

// Snapshot returns operation counters followed by error counters, each
// sorted by name.
func (m *Metrics) Snapshot() []Counter {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := sortedCounters(m.opCount, "")
	return append(out, sortedCounters(m.errorCount, "error|")...)
}

func sortedCounters(src map[string]int64, prefix string) []Counter {
	out := make([]Counter, 0, len(src))
	for k, v := range src {
		out = append(out, Counter{Name: prefix + k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
