package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/internal/resilience"
	"github.com/nearbite/nearbite/internal/runlog"
)

// MetricsSnapshot holds a point-in-time view of system health.
type MetricsSnapshot struct {
	// Process-lifetime counters.
	RequestsTotal   int                     `json:"requests_total"`
	RequestsByState map[string]int          `json:"requests_by_state"`
	DegradedStages  map[string]int          `json:"degraded_stages"`
	Stages          map[string]StageMetrics `json:"stages"`
	DegradedRate    float64                 `json:"degraded_rate"`

	// External provider circuit breakers.
	Breakers map[string]string `json:"breakers"`

	// Recent runs from the run log.
	RecentRuns []model.Run `json:"recent_runs,omitempty"`

	// Metadata.
	UptimeSecs  float64   `json:"uptime_secs"`
	CollectedAt time.Time `json:"collected_at"`
}

// Collector assembles snapshots from the live counters, the breaker set,
// and the run log.
type Collector struct {
	metrics  *Metrics
	breakers *resilience.BreakerSet
	runs     runlog.Store
	started  time.Time
}

func NewCollector(metrics *Metrics, breakers *resilience.BreakerSet, runs runlog.Store) *Collector {
	return &Collector{
		metrics:  metrics,
		breakers: breakers,
		runs:     runs,
		started:  time.Now().UTC(),
	}
}

// Collect gathers a snapshot, including up to recentRuns entries from
// the run log when one is configured.
func (c *Collector) Collect(ctx context.Context, recentRuns int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		CollectedAt: time.Now().UTC(),
		UptimeSecs:  time.Since(c.started).Seconds(),
	}

	snap.RequestsTotal, snap.RequestsByState, snap.DegradedStages = c.metrics.Requests()
	snap.Stages = c.metrics.Stages()

	if snap.RequestsTotal > 0 {
		degraded := snap.RequestsByState[string(model.StateDegraded)]
		snap.DegradedRate = float64(degraded) / float64(snap.RequestsTotal)
	}

	if c.breakers != nil {
		snap.Breakers = c.breakers.States()
	}

	if c.runs != nil && recentRuns > 0 {
		runs, err := c.runs.ListRuns(ctx, recentRuns)
		if err != nil {
			return nil, eris.Wrap(err, "monitoring: list runs")
		}
		snap.RecentRuns = runs
	}

	return snap, nil
}
