package model

import "time"

// RunState tracks where a pipeline run currently is.
type RunState string

const (
	StateReceived     RunState = "received"
	StateFiltered     RunState = "filtered"
	StateGeocoded     RunState = "geocoded"
	StateDiscovered   RunState = "discovered"
	StateResolved     RunState = "resolved"
	StateRanked       RunState = "ranked"
	StateContextBuilt RunState = "context_built"
	StateAnswered     RunState = "answered"
	StateDegraded     RunState = "degraded"
	StateRejected     RunState = "rejected"
)

// StageStatus is the outcome of a single pipeline stage.
type StageStatus string

const (
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
	StageStatusSkipped  StageStatus = "skipped"
	StageStatusTimeout  StageStatus = "timeout"
)

// StageResult records one stage's outcome for diagnostics and the run log.
type StageResult struct {
	Name     string         `json:"name"`
	Status   StageStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Run is a recorded pipeline run.
type Run struct {
	ID        string     `json:"id"`
	Query     string     `json:"query"`
	SessionID string     `json:"session_id"`
	State     RunState   `json:"state"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run for the run log.
type RunResult struct {
	Merchants int           `json:"merchants"`
	Degraded  []string      `json:"degraded,omitempty"`
	Stages    []StageResult `json:"stages,omitempty"`
	Answer    string        `json:"answer,omitempty"`
}
