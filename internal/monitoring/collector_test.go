package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/internal/resilience"
	"github.com/nearbite/nearbite/internal/runlog"
)

type fakeRunStore struct {
	runlog.Nop
	runs []model.Run
}

func (f *fakeRunStore) ListRuns(_ context.Context, limit int) ([]model.Run, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func TestCollect(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordRun(model.StateAnswered, nil)
	metrics.RecordRun(model.StateDegraded, []string{"discovery"})
	metrics.RecordStage(model.StageResult{Name: "geocode", Status: model.StageStatusComplete, Duration: 50})

	breakers := resilience.NewBreakerSet(3, time.Minute)
	breakers.Get("navermap")

	store := &fakeRunStore{runs: []model.Run{
		{ID: "r1", Query: "카페 추천", State: model.StateAnswered},
		{ID: "r2", Query: "국밥", State: model.StateDegraded},
	}}

	c := NewCollector(metrics, breakers, store)
	snap, err := c.Collect(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.RequestsTotal)
	assert.InDelta(t, 0.5, snap.DegradedRate, 1e-9)
	assert.Equal(t, 1, snap.DegradedStages["discovery"])
	assert.Equal(t, "closed", snap.Breakers["navermap"])
	require.Len(t, snap.RecentRuns, 1)
	assert.Equal(t, "r1", snap.RecentRuns[0].ID)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollect_NoRunLog(t *testing.T) {
	c := NewCollector(NewMetrics(), nil, nil)
	snap, err := c.Collect(context.Background(), 10)
	require.NoError(t, err)

	assert.Zero(t, snap.RequestsTotal)
	assert.Zero(t, snap.DegradedRate)
	assert.Empty(t, snap.RecentRuns)
	assert.Nil(t, snap.Breakers)
}
