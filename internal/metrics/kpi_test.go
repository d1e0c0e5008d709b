package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectKPIsPreservesSourceOrder(t *testing.T) {
	sources := []KPISource{
		{Label: "opens", Fetch: func(ctx context.Context) (float64, float64, error) {
			time.Sleep(30 * time.Millisecond) // finish last
			return 150, 100, nil
		}},
		{Label: "clicks", Fetch: func(ctx context.Context) (float64, float64, error) {
			return 40, 50, nil
		}},
	}

	results := CollectKPIs(context.Background(), sources)

	assert.Len(t, results, 2)
	assert.Equal(t, "opens", results[0].Label)
	assert.Equal(t, MetricTrend{Label: "opens", Value: 150, Delta: 50, Trend: TrendUp}, results[0])
	assert.Equal(t, MetricTrend{Label: "clicks", Value: 40, Delta: -20, Trend: TrendDown}, results[1])
}

// One failing metric must not blank the panel: the failure is defaulted
// individually while the rest complete normally.
func TestCollectKPIsDefaultsFailedSourceOnly(t *testing.T) {
	sources := []KPISource{
		{Label: "good", Fetch: func(ctx context.Context) (float64, float64, error) {
			return 200, 100, nil
		}},
		{Label: "bad", Fetch: func(ctx context.Context) (float64, float64, error) {
			return 0, 0, errors.New("backend unavailable")
		}},
		{Label: "also good", Fetch: func(ctx context.Context) (float64, float64, error) {
			return 100, 100, nil
		}},
	}

	results := CollectKPIs(context.Background(), sources)

	assert.Equal(t, MetricTrend{Label: "good", Value: 200, Delta: 100, Trend: TrendUp}, results[0])
	assert.Equal(t, MetricTrend{Label: "bad", Trend: TrendFlat}, results[1])
	assert.Equal(t, MetricTrend{Label: "also good", Value: 100, Delta: 0, Trend: TrendFlat}, results[2])
}

func TestCollectKPIsFansOutConcurrently(t *testing.T) {
	var inFlight, peak int32
	slowFetch := func(ctx context.Context) (float64, float64, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 1, 1, nil
	}

	sources := []KPISource{
		{Label: "a", Fetch: slowFetch},
		{Label: "b", Fetch: slowFetch},
		{Label: "c", Fetch: slowFetch},
	}

	start := time.Now()
	CollectKPIs(context.Background(), sources)
	elapsed := time.Since(start)

	assert.Greater(t, atomic.LoadInt32(&peak), int32(1), "fetches should overlap")
	assert.Less(t, elapsed, 140*time.Millisecond, "fan-out should not serialize fetches")
}

func TestCollectKPIsEmptySources(t *testing.T) {
	results := CollectKPIs(context.Background(), nil)
	assert.Empty(t, results)
}
