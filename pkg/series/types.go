// Package series implements the pure aggregation and resampling engine
// behind the market board: tick-to-bar aggregation, native bar window
// maintenance, interval parsing, linear resampling of analytics series,
// first-difference derivation, and deterministic synthetic fallbacks.
//
// Every function in this package is a synchronous transform over value
// inputs. Nothing here blocks, spawns goroutines, reads clocks (the
// synthetic generator takes an explicit anchor), or mutates its inputs;
// callers own all scheduling, locking, and state replacement.
package series

// CandleWindow bounds the candle series to the most recent bars.
const CandleWindow = 500

// AnalyticsWindow bounds every analytics series to the most recent points.
const AnalyticsWindow = 500

// Tick is a single executed trade event. Times are Unix milliseconds.
type Tick struct {
	Price float64
	Qty   float64
	Time  int64
}

// Bar is an OHLCV summary for one fixed time bucket, identified by the
// bucket start in Unix milliseconds.
type Bar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// LevelPoint carries an open-interest style level and its notional value.
type LevelPoint struct {
	Time     int64   `json:"time"`
	Value    float64 `json:"value"`
	Notional float64 `json:"notional"`
}

// RatioPoint carries complementary long/short percentages. Ratio is
// always Long/Short (0 when Short is 0); it is derived, never decoded.
type RatioPoint struct {
	Time  int64   `json:"time"`
	Long  float64 `json:"long"`
	Short float64 `json:"short"`
	Ratio float64 `json:"ratio"`
}

// VolumePoint carries taker buy/sell volume. Ratio is Buy/Sell, 0 when
// Sell is 0.
type VolumePoint struct {
	Time  int64   `json:"time"`
	Buy   float64 `json:"buyVolume"`
	Sell  float64 `json:"sellVolume"`
	Ratio float64 `json:"ratio"`
}

// BasisPoint carries a mark/index price pair. Basis is Mark - Index.
type BasisPoint struct {
	Time  int64   `json:"time"`
	Mark  float64 `json:"markPrice"`
	Index float64 `json:"indexPrice"`
	Basis float64 `json:"basis"`
}

// DeltaPoint is the first difference of a level series. Increase is
// never negative and Decrease never positive.
type DeltaPoint struct {
	Time     int64   `json:"time"`
	Increase float64 `json:"increase"`
	Decrease float64 `json:"decrease"`
}

func ratioOf(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
