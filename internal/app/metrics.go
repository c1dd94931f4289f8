package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts what a session did and how long it took.
type Metrics struct {
	editCount   atomic.Uint64
	editTotalNs atomic.Int64
	editMinNs   atomic.Int64
	editMaxNs   atomic.Int64

	undoCount atomic.Uint64
	redoCount atomic.Uint64
	failures  atomic.Uint64

	scriptCount   atomic.Uint64
	scriptTotalNs atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so the first edit will be smaller
	m.editMinNs.Store(1<<63 - 1)
	return m
}

// RecordEdit records the time one edit took.
func (m *Metrics) RecordEdit(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.editCount.Add(1)
	m.editTotalNs.Add(ns)

	for {
		old := m.editMinNs.Load()
		if ns >= old || m.editMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.editMaxNs.Load()
		if ns <= old || m.editMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordUndo records an undo.
func (m *Metrics) RecordUndo() {
	m.undoCount.Add(1)
}

// RecordRedo records a redo.
func (m *Metrics) RecordRedo() {
	m.redoCount.Add(1)
}

// RecordFailure records a command that returned an error.
func (m *Metrics) RecordFailure() {
	m.failures.Add(1)
}

// RecordScript records a script run.
func (m *Metrics) RecordScript(duration time.Duration) {
	m.scriptCount.Add(1)
	m.scriptTotalNs.Add(duration.Nanoseconds())
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	editCount := m.editCount.Load()
	scriptCount := m.scriptCount.Load()

	var avgEditNs int64
	if editCount > 0 {
		avgEditNs = m.editTotalNs.Load() / int64(editCount)
	}

	var avgScriptNs int64
	if scriptCount > 0 {
		avgScriptNs = m.scriptTotalNs.Load() / int64(scriptCount)
	}

	minEditNs := m.editMinNs.Load()
	if minEditNs == 1<<63-1 {
		minEditNs = 0
	}

	return MetricsSnapshot{
		Uptime:      time.Since(m.startTime),
		EditCount:   editCount,
		AvgEditNs:   avgEditNs,
		MinEditNs:   minEditNs,
		MaxEditNs:   m.editMaxNs.Load(),
		UndoCount:   m.undoCount.Load(),
		RedoCount:   m.redoCount.Load(),
		Failures:    m.failures.Load(),
		ScriptCount: scriptCount,
		AvgScriptNs: avgScriptNs,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.editCount.Store(0)
	m.editTotalNs.Store(0)
	m.editMinNs.Store(1<<63 - 1)
	m.editMaxNs.Store(0)
	m.undoCount.Store(0)
	m.redoCount.Store(0)
	m.failures.Store(0)
	m.scriptCount.Store(0)
	m.scriptTotalNs.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime      time.Duration
	EditCount   uint64
	AvgEditNs   int64
	MinEditNs   int64
	MaxEditNs   int64
	UndoCount   uint64
	RedoCount   uint64
	Failures    uint64
	ScriptCount uint64
	AvgScriptNs int64
}
