package runlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbite/nearbite/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "동국대 근처 카페 추천해줘", "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.StateReceived, run.State)

	require.NoError(t, s.UpdateState(ctx, run.ID, model.StateDiscovered))

	result := &model.RunResult{
		Merchants: 3,
		Degraded:  []string{"answer"},
		Stages: []model.StageResult{
			{Name: "geocode", Status: model.StageStatusComplete, Duration: 120},
			{Name: "answer", Status: model.StageStatusFailed, Error: "overloaded"},
		},
		Answer: "주변 추천 매장입니다.",
	}
	require.NoError(t, s.FinishRun(ctx, run.ID, model.StateAnswered, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StateAnswered, got.State)
	assert.Equal(t, "동국대 근처 카페 추천해줘", got.Query)
	require.NotNil(t, got.Result)
	assert.Equal(t, 3, got.Result.Merchants)
	assert.Equal(t, []string{"answer"}, got.Result.Degraded)
	require.Len(t, got.Result.Stages, 2)
	assert.Equal(t, model.StageStatusFailed, got.Result.Stages[1].Status)
}

func TestSQLiteGetRun_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRun(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, q := range []string{"첫번째", "두번째", "세번째"} {
		_, err := s.CreateRun(ctx, q, "")
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNopStore(t *testing.T) {
	var s Store = Nop{}
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "q", "sess")
	require.NoError(t, err)
	assert.Equal(t, model.StateReceived, run.State)
	require.NoError(t, s.UpdateState(ctx, "x", model.StateAnswered))
	require.NoError(t, s.FinishRun(ctx, "x", model.StateAnswered, nil))
	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
