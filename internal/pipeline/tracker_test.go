package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbite/nearbite/internal/model"
)

func TestTrackerStage(t *testing.T) {
	tr := &tracker{}

	err := tr.stage(context.Background(), "rank", 0, func(context.Context) error { return nil })
	require.NoError(t, err)

	err = tr.stage(context.Background(), "resolve", 0, func(context.Context) error {
		return eris.New("connection refused")
	})
	require.Error(t, err)

	require.Len(t, tr.stages, 2)
	assert.Equal(t, model.StageStatusComplete, tr.stages[0].Status)
	assert.Equal(t, model.StageStatusFailed, tr.stages[1].Status)
	assert.Equal(t, "connection refused", tr.stages[1].Error)
}

func TestTrackerStage_Timeout(t *testing.T) {
	tr := &tracker{}

	err := tr.stage(context.Background(), "discovery", 10*time.Millisecond, func(sctx context.Context) error {
		select {
		case <-sctx.Done():
			return sctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	require.Error(t, err)

	require.Len(t, tr.stages, 1)
	assert.Equal(t, model.StageStatusTimeout, tr.stages[0].Status)
}

func TestTrackerSkipAndDegrade(t *testing.T) {
	tr := &tracker{}

	tr.skip("resolve", "rank")
	tr.degrade("discovery")
	tr.degrade("discovery")

	require.Len(t, tr.stages, 2)
	assert.Equal(t, model.StageStatusSkipped, tr.stages[0].Status)
	assert.Equal(t, []string{"discovery"}, tr.degraded)
}

func TestTrackerAnnotate(t *testing.T) {
	tr := &tracker{}
	tr.annotate(map[string]any{"ignored": true})

	_ = tr.stage(context.Background(), "filter", 0, func(context.Context) error { return nil })
	tr.annotate(map[string]any{"place_type": "카페"})

	assert.Equal(t, "카페", tr.stages[0].Metadata["place_type"])
}
