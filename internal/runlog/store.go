// Package runlog persists pipeline runs for operational inspection.
package runlog

import (
	"context"

	"github.com/nearbite/nearbite/internal/model"
)

// Store records runs and their final results.
type Store interface {
	// CreateRun inserts a new run in its initial state and returns it.
	CreateRun(ctx context.Context, query, sessionID string) (*model.Run, error)

	// UpdateState advances a run's state.
	UpdateState(ctx context.Context, runID string, state model.RunState) error

	// FinishRun stores the final state and result.
	FinishRun(ctx context.Context, runID string, state model.RunState, result *model.RunResult) error

	// GetRun fetches one run by id.
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	Close() error
}

// Nop discards everything. Used when no run log is configured.
type Nop struct{}

func (Nop) CreateRun(_ context.Context, query, sessionID string) (*model.Run, error) {
	return &model.Run{Query: query, SessionID: sessionID, State: model.StateReceived}, nil
}

func (Nop) UpdateState(context.Context, string, model.RunState) error { return nil }

func (Nop) FinishRun(context.Context, string, model.RunState, *model.RunResult) error { return nil }

func (Nop) GetRun(context.Context, string) (*model.Run, error) { return nil, nil }

func (Nop) ListRuns(context.Context, int) ([]model.Run, error) { return nil, nil }

func (Nop) Close() error { return nil }
