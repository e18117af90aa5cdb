// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Prompt/response sizes (only for LLM operations)
	TotalPromptChars   int64
	TotalResponseChars int64
	MaxPromptChars     int64
	MaxResponseChars   int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64

	// Size stats (nil if not applicable)
	TotalPromptChars   *int64
	TotalResponseChars *int64
	AvgPromptChars     *float64
	AvgResponseChars   *float64
	MaxPromptChars     *int64
	MaxResponseChars   *int64
}

// Snapshot represents the full pipeline statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	Extraction    *OperationSnapshot
	Oracle        *OperationSnapshot
	StoreQuery    *OperationSnapshot
	Publish       *OperationSnapshot
}

// Operation names for the collector.
const (
	OpExtraction = "extraction"
	OpOracle     = "oracle_complete"
	OpStoreQuery = "store_query"
	OpPublish    = "publish"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime: time.Duration(math.MaxInt64),
		}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordOracleUsage records timing and prompt/response sizes for an LLM call.
func (c *Collector) RecordOracleUsage(duration time.Duration, promptChars, responseChars int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(OpOracle)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	m.TotalPromptChars += promptChars
	m.TotalResponseChars += responseChars
	if promptChars > m.MaxPromptChars {
		m.MaxPromptChars = promptChars
	}
	if responseChars > m.MaxResponseChars {
		m.MaxResponseChars = responseChars
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeSizes bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeSizes && (m.TotalPromptChars > 0 || m.TotalResponseChars > 0) {
		totalPrompt := m.TotalPromptChars
		totalResponse := m.TotalResponseChars
		avgPrompt := float64(m.TotalPromptChars) / float64(m.Count)
		avgResponse := float64(m.TotalResponseChars) / float64(m.Count)
		maxPrompt := m.MaxPromptChars
		maxResponse := m.MaxResponseChars

		snap.TotalPromptChars = &totalPrompt
		snap.TotalResponseChars = &totalResponse
		snap.AvgPromptChars = &avgPrompt
		snap.AvgResponseChars = &avgResponse
		snap.MaxPromptChars = &maxPrompt
		snap.MaxResponseChars = &maxResponse
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Extraction:    snapshotOp(c.ops[OpExtraction], false),
		Oracle:        snapshotOp(c.ops[OpOracle], true),
		StoreQuery:    snapshotOp(c.ops[OpStoreQuery], false),
		Publish:       snapshotOp(c.ops[OpPublish], false),
	}
}
