package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/nearbite/nearbite/internal/model"
)

// tracker accumulates per-stage results and the degraded stage list for
// one run. It is not safe for concurrent use; stages run sequentially.
type tracker struct {
	stages   []model.StageResult
	degraded []string
}

// stage runs fn under an optional timeout and records its outcome. The
// returned error is fn's error so callers can branch on it.
func (t *tracker) stage(ctx context.Context, name string, timeout time.Duration, fn func(context.Context) error) error {
	sctx := ctx
	cancel := func() {}
	if timeout > 0 {
		sctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	start := time.Now()
	err := fn(sctx)

	sr := model.StageResult{
		Name:     name,
		Status:   model.StageStatusComplete,
		Duration: time.Since(start).Milliseconds(),
	}
	if err != nil {
		sr.Error = err.Error()
		sr.Status = model.StageStatusFailed
		if eris.Is(err, context.DeadlineExceeded) || eris.Is(sctx.Err(), context.DeadlineExceeded) {
			sr.Status = model.StageStatusTimeout
		}
	}
	t.stages = append(t.stages, sr)
	return err
}

// skip records stages that will not run this time.
func (t *tracker) skip(names ...string) {
	for _, name := range names {
		t.stages = append(t.stages, model.StageResult{
			Name:   name,
			Status: model.StageStatusSkipped,
		})
	}
}

// degrade marks a stage as degraded, once.
func (t *tracker) degrade(name string) {
	for _, d := range t.degraded {
		if d == name {
			return
		}
	}
	t.degraded = append(t.degraded, name)
}

// annotate attaches metadata to the most recently recorded stage.
func (t *tracker) annotate(md map[string]any) {
	if len(t.stages) == 0 {
		return
	}
	t.stages[len(t.stages)-1].Metadata = md
}
