package series

import (
	"math"
	"sort"
)

// volumeScale fixes accumulated volume at six decimal places. Rounding
// happens after every addition so batch results match what incremental
// merging produces for the same ticks.
const volumeScale = 1e6

func roundVolume(v float64) float64 {
	return math.Round(v*volumeScale) / volumeScale
}

func validTick(t Tick) bool {
	return isFinite(t.Price) && isFinite(t.Qty) && isFinite(float64(t.Time))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func bucketStart(ts, bucket int64) int64 {
	return int64(math.Floor(float64(ts)/float64(bucket))) * bucket
}

// BuildBars aggregates raw trades into OHLCV bars of the given bucket
// width in milliseconds. Within a bucket, open and close follow tick
// processing order while high/low/volume accumulate across all ticks.
// Invalid ticks are skipped. The result is ascending by bucket start,
// unique per bucket, and bounded to the last CandleWindow bars.
func BuildBars(ticks []Tick, bucketMs int64) []Bar {
	if bucketMs <= 0 {
		return []Bar{}
	}

	byBucket := make(map[int64]*Bar)
	for _, tick := range ticks {
		if !validTick(tick) {
			continue
		}
		start := bucketStart(tick.Time, bucketMs)
		bar, ok := byBucket[start]
		if !ok {
			byBucket[start] = &Bar{
				Time:   start,
				Open:   tick.Price,
				High:   tick.Price,
				Low:    tick.Price,
				Close:  tick.Price,
				Volume: roundVolume(tick.Qty),
			}
			continue
		}
		bar.High = math.Max(bar.High, tick.Price)
		bar.Low = math.Min(bar.Low, tick.Price)
		bar.Close = tick.Price
		bar.Volume = roundVolume(bar.Volume + tick.Qty)
	}

	bars := make([]Bar, 0, len(byBucket))
	for _, bar := range byBucket {
		bars = append(bars, *bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return trimBars(bars, CandleWindow)
}

// MergeTick folds a single trade into an existing bar series: the bar
// for the tick's bucket is updated in a fresh copy, or a new single-trade
// bar is appended. Replaying the same tick accumulates volume again; the
// aggregator does not deduplicate. An invalid tick returns the input
// unchanged. The result is re-sorted so late trades are tolerated.
func MergeTick(bars []Bar, tick Tick, bucketMs int64) []Bar {
	if bucketMs <= 0 || !validTick(tick) {
		return bars
	}

	start := bucketStart(tick.Time, bucketMs)
	merged := make([]Bar, len(bars))
	copy(merged, bars)

	updated := false
	for i := range merged {
		if merged[i].Time != start {
			continue
		}
		merged[i].High = math.Max(merged[i].High, tick.Price)
		merged[i].Low = math.Min(merged[i].Low, tick.Price)
		merged[i].Close = tick.Price
		merged[i].Volume = roundVolume(merged[i].Volume + tick.Qty)
		updated = true
		break
	}
	if !updated {
		merged = append(merged, Bar{
			Time:   start,
			Open:   tick.Price,
			High:   tick.Price,
			Low:    tick.Price,
			Close:  tick.Price,
			Volume: roundVolume(tick.Qty),
		})
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Time < merged[j].Time })
	return trimBars(merged, CandleWindow)
}

// MergeNativeBar folds an upstream-bucketed bar into the series with
// replace-on-duplicate semantics, so a still-open bucket can be
// re-delivered without growing the window.
func MergeNativeBar(bars []Bar, bar Bar, limit int) []Bar {
	merged := make([]Bar, 0, len(bars)+1)
	for _, existing := range bars {
		if existing.Time == bar.Time {
			continue
		}
		merged = append(merged, existing)
	}
	merged = append(merged, bar)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Time < merged[j].Time })
	return trimBars(merged, limit)
}

// trimBars keeps the most recent limit bars. Truncation always discards
// from the front of an already sorted series.
func trimBars(bars []Bar, limit int) []Bar {
	if limit > 0 && len(bars) > limit {
		return bars[len(bars)-limit:]
	}
	return bars
}
