package metrics

import (
	"context"
	"sync"

	"github.com/ignite/campaign-intel/internal/pkg/logger"
)

// KPISource produces one dashboard metric: its current value and the value
// of the prior period.
type KPISource struct {
	Label string
	Fetch func(ctx context.Context) (current, previous float64, err error)
}

// CollectKPIs issues every source's fetch concurrently (fan-out) and
// awaits them all (fan-in); there is no ordering requirement between them.
// A failure in one source must not blank the whole panel: each failure is
// caught and defaulted individually to a zero flat metric.
//
// The result preserves source order regardless of completion order.
func CollectKPIs(ctx context.Context, sources []KPISource) []MetricTrend {
	results := make([]MetricTrend, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src KPISource) {
			defer wg.Done()

			current, previous, err := src.Fetch(ctx)
			if err != nil {
				logger.Warn("metrics: KPI fetch failed, defaulting", "label", src.Label, "error", err)
				results[i] = MetricTrend{Label: src.Label, Trend: TrendFlat}
				return
			}

			delta, trend := Trend(current, previous)
			results[i] = MetricTrend{
				Label: src.Label,
				Value: current,
				Delta: delta,
				Trend: trend,
			}
		}(i, src)
	}
	wg.Wait()

	return results
}
