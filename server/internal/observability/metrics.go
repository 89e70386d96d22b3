package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates per-operation counters for the profile API.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	operationMetrics map[string]*OperationMetrics

	durations    []time.Duration
	maxDurations int
}

// OperationMetrics holds counters for one operation name.
type OperationMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
}

// NewMetrics creates a metrics collector keeping the last maxDurations
// request durations.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		operationMetrics: make(map[string]*OperationMetrics),
		durations:        make([]time.Duration, 0, maxDurations),
		maxDurations:     maxDurations,
	}
}

var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest counts one request for the operation.
func (m *Metrics) RecordRequest(operation string) {
	m.requestTotal.Add(1)
	m.getOperationMetrics(operation).executionCount.Add(1)
}

// RecordFailure counts one failed request for the operation.
func (m *Metrics) RecordFailure(operation string) {
	m.requestFailed.Add(1)
	m.getOperationMetrics(operation).errorCount.Add(1)
}

// RecordDuration records how long the operation took.
func (m *Metrics) RecordDuration(operation string, duration time.Duration) {
	m.getOperationMetrics(operation).totalDuration.Add(duration.Milliseconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
}

// Snapshot is a point-in-time view of one operation's counters.
type Snapshot struct {
	Operation       string
	ExecutionCount  int64
	ErrorCount      int64
	TotalDurationMs int64
}

// SnapshotAll returns a snapshot per recorded operation.
func (m *Metrics) SnapshotAll() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshots := make([]Snapshot, 0, len(m.operationMetrics))
	for operation, om := range m.operationMetrics {
		snapshots = append(snapshots, Snapshot{
			Operation:       operation,
			ExecutionCount:  om.executionCount.Load(),
			ErrorCount:      om.errorCount.Load(),
			TotalDurationMs: om.totalDuration.Load(),
		})
	}
	return snapshots
}

// RequestTotals returns total and failed request counts.
func (m *Metrics) RequestTotals() (total, failed int64) {
	return m.requestTotal.Load(), m.requestFailed.Load()
}

func (m *Metrics) getOperationMetrics(operation string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	om, ok := m.operationMetrics[operation]
	if !ok {
		om = &OperationMetrics{}
		m.operationMetrics[operation] = om
	}
	return om
}
