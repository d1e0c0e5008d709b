// Package metrics holds the small pure calculations shared by the
// dashboard and experiment summaries, plus the fan-out KPI panel.
package metrics

import "math"

// Direction is the three-way trend classification of a metric.
type Direction string

const (
	TrendUp   Direction = "up"
	TrendDown Direction = "down"
	TrendFlat Direction = "flat"
)

// MetricTrend is a labeled metric with its signed percentage delta against
// the prior period. Recomputed on every fetch, never persisted.
type MetricTrend struct {
	Label string    `json:"label"`
	Value float64   `json:"value"`
	Delta float64   `json:"delta"`
	Trend Direction `json:"trend"`
}

// Trend derives the signed percentage delta and classification for a
// current/prior pair. Total function:
//
//   - previous == 0 yields {0, flat} unconditionally; division by zero is
//     defined away rather than raised.
//   - otherwise delta is the percentage change rounded to one decimal.
//     A change below 0.1% in magnitude is classified flat even though the
//     numeric delta is reported as computed, so near-zero noise does not
//     produce visually noisy up/down labels.
func Trend(current, previous float64) (delta float64, trend Direction) {
	if previous == 0 {
		return 0, TrendFlat
	}

	pct := (current - previous) / previous * 100
	delta = math.Round(pct*10) / 10

	switch {
	case math.Abs(pct) < 0.1:
		trend = TrendFlat
	case pct > 0:
		trend = TrendUp
	default:
		trend = TrendDown
	}
	return delta, trend
}
