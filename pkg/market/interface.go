package market

import (
	"context"

	"marketboard-api/pkg/series"
)

// Source identifies what the board currently displays. The three states
// are deliberately distinct so callers can render "sample data" notices
// separately from plain errors.
type Source string

const (
	// SourceSyntheticBoot marks placeholder data shown before the first
	// upstream fetch has been attempted.
	SourceSyntheticBoot Source = "synthetic_boot"
	// SourceSyntheticFallback marks placeholder data shown because the
	// latest fetch failed or returned an unusable payload.
	SourceSyntheticFallback Source = "synthetic_fallback"
	// SourceLive marks data assembled from a successful upstream fetch.
	SourceLive Source = "live"
)

// Synthetic reports whether the source is one of the placeholder states.
func (s Source) Synthetic() bool {
	return s == SourceSyntheticBoot || s == SourceSyntheticFallback
}

// AnalyticsBundle groups the derived series shown on the analytics
// board. OpenInterestDelta is always recomputed from OpenInterest after
// resampling, never interpolated on its own.
type AnalyticsBundle struct {
	OpenInterest       []series.LevelPoint  `json:"openInterest"`
	OpenInterestDelta  []series.DeltaPoint  `json:"openInterestDelta"`
	TopAccountRatio    []series.RatioPoint  `json:"topAccountRatio"`
	TopPositionRatio   []series.RatioPoint  `json:"topPositionRatio"`
	GlobalAccountRatio []series.RatioPoint  `json:"globalAccountRatio"`
	TakerVolume        []series.VolumePoint `json:"takerVolume"`
	Basis              []series.BasisPoint  `json:"basis"`
}

// IndicatorSet summarises the latest technical indicator readings over
// the candle window. Values are zero when the window is too short to
// produce a reading.
type IndicatorSet struct {
	EMA20 float64 `json:"ema20"`
	EMA50 float64 `json:"ema50"`
	MACD  float64 `json:"macd"`
	RSI14 float64 `json:"rsi14"`
	ATR14 float64 `json:"atr14"`
}

// Board is the complete state served to the dashboard for one symbol.
// It is a value: each refresh produces a fresh Board which replaces the
// previous one wholesale.
type Board struct {
	Symbol      string          `json:"symbol"`
	Candles     []series.Bar    `json:"candles"`
	Analytics   AnalyticsBundle `json:"analytics"`
	Indicators  IndicatorSet    `json:"indicators"`
	Source      Source          `json:"source"`
	RefreshedAt int64           `json:"refreshedAt"` // Unix ms of the last state change
}

// Provider exposes exchange market data, already decoded into core
// series records. Implementations own transport concerns (HTTP, retry,
// region restrictions); the series values they return are structurally
// validated and unit-normalized.
type Provider interface {
	// Klines returns native OHLCV bars for the interval, oldest first.
	Klines(ctx context.Context, symbol, interval string, limit int) ([]series.Bar, error)
	// RecentTrades returns the latest raw trades, oldest first. Used to
	// build bars finer than the provider's native minimum interval.
	RecentTrades(ctx context.Context, symbol string, limit int) ([]series.Tick, error)
	// OpenInterestHist returns the open interest level series at the
	// provider's native sampling period.
	OpenInterestHist(ctx context.Context, symbol, period string, limit int) ([]series.LevelPoint, error)
	// TopAccountRatio returns the top-trader long/short account ratio.
	TopAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error)
	// TopPositionRatio returns the top-trader long/short position ratio.
	TopPositionRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error)
	// GlobalAccountRatio returns the all-accounts long/short ratio.
	GlobalAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error)
	// TakerVolume returns the taker buy/sell volume series.
	TakerVolume(ctx context.Context, symbol, period string, limit int) ([]series.VolumePoint, error)
	// Basis returns the mark/index basis series.
	Basis(ctx context.Context, symbol, period string, limit int) ([]series.BasisPoint, error)
}

// TradeStreamer is implemented by providers that can push live trades.
// The handler runs on the stream's reader goroutine; implementations
// return when ctx is cancelled or the connection drops, leaving
// reconnect policy to the caller.
type TradeStreamer interface {
	StreamTrades(ctx context.Context, symbol string, handler func(series.Tick)) error
}
