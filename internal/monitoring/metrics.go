// Package monitoring tracks per-stage latency and degradation across
// recommendation runs, and raises webhook alerts when health thresholds
// are breached.
package monitoring

import (
	"sync"

	"github.com/nearbite/nearbite/internal/model"
)

// StageMetrics aggregates outcomes for one pipeline stage.
type StageMetrics struct {
	Count    int     `json:"count"`
	Failed   int     `json:"failed"`
	Timeout  int     `json:"timeout"`
	Skipped  int     `json:"skipped"`
	AvgMS    float64 `json:"avg_ms"`
	totalMS  int64
	measured int
}

// Metrics accumulates in-process counters for the stats endpoint.
type Metrics struct {
	mu       sync.Mutex
	requests int
	byState  map[model.RunState]int
	degraded map[string]int
	stages   map[string]*StageMetrics
}

func NewMetrics() *Metrics {
	return &Metrics{
		byState:  make(map[model.RunState]int),
		degraded: make(map[string]int),
		stages:   make(map[string]*StageMetrics),
	}
}

// RecordRun counts one finished run by its final state and the stages
// that degraded during it.
func (m *Metrics) RecordRun(state model.RunState, degradedStages []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	m.byState[state]++
	for _, s := range degradedStages {
		m.degraded[s]++
	}
}

// RecordStage folds one stage outcome into the aggregates.
func (m *Metrics) RecordStage(sr model.StageResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sm := m.stages[sr.Name]
	if sm == nil {
		sm = &StageMetrics{}
		m.stages[sr.Name] = sm
	}
	sm.Count++
	switch sr.Status {
	case model.StageStatusFailed:
		sm.Failed++
	case model.StageStatusTimeout:
		sm.Timeout++
	case model.StageStatusSkipped:
		sm.Skipped++
	}
	if sr.Status != model.StageStatusSkipped {
		sm.totalMS += sr.Duration
		sm.measured++
	}
}

// Requests returns total runs, runs by final state, and per-stage
// degradation counts.
func (m *Metrics) Requests() (total int, byState map[string]int, degraded map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byState = make(map[string]int, len(m.byState))
	for s, n := range m.byState {
		byState[string(s)] = n
	}
	degraded = make(map[string]int, len(m.degraded))
	for s, n := range m.degraded {
		degraded[s] = n
	}
	return m.requests, byState, degraded
}

// Stages returns a copy of the per-stage aggregates with averages filled in.
func (m *Metrics) Stages() map[string]StageMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]StageMetrics, len(m.stages))
	for name, sm := range m.stages {
		cp := *sm
		if sm.measured > 0 {
			cp.AvgMS = float64(sm.totalMS) / float64(sm.measured)
		}
		out[name] = cp
	}
	return out
}
