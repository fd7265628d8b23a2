package market

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"marketboard-api/pkg/market/indicators"
	"marketboard-api/pkg/series"
)

const (
	// DefaultBarInterval is substituted when the requested candle
	// granularity fails to parse.
	DefaultBarInterval = "1m"
	// DefaultPeriod is substituted when the requested analytics period
	// fails to parse.
	DefaultPeriod = "5m"

	defaultNativeBarInterval = "1m"
	defaultNativePeriod      = "5m"
	defaultAnalyticsLimit    = 200
	defaultBootCandles       = 120
	defaultTradeBatch        = 1000
)

// FeedConfig configures a Feed for one symbol.
type FeedConfig struct {
	Symbol string

	// BarInterval is the requested candle granularity. When it parses to
	// less than NativeBarInterval, candles are built from raw trades
	// instead of native klines.
	BarInterval string
	// Period is the requested analytics granularity. Native analytics
	// samples are resampled down to it.
	Period string

	// NativeBarInterval is the smallest bar size the provider serves
	// directly. Defaults to "1m".
	NativeBarInterval string
	// NativePeriod is the sampling period the provider's analytics
	// endpoints are requested at. Defaults to "5m".
	NativePeriod string

	CandleLimit    int // bounded candle window, defaults to series.CandleWindow
	AnalyticsLimit int // native samples fetched per analytics series
	TradeBatch     int // raw trades fetched when building sub-native bars

	// Now supplies the synthetic anchor; defaults to time.Now.
	Now func() time.Time
}

// Feed owns the current Board for a single symbol. It is the only
// writer of that state: every mutating call applies a pure reducer from
// pkg/series to the previous value and swaps in the result wholesale, so
// readers never observe a partially updated board.
type Feed struct {
	provider Provider
	cfg      FeedConfig

	barMs        int64
	periodMs     int64
	nativeBarMs  int64
	subNative    bool
	candleLimit  int
	analyticsLim int

	mu    sync.RWMutex
	board Board
}

// NewFeed constructs a feed and bootstraps it with synthetic data so the
// dashboard has something to draw before the first refresh completes.
func NewFeed(provider Provider, cfg FeedConfig) *Feed {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	// Interval strings are normalized here, not just their parsed
	// durations: the provider receives these verbatim, so an unparseable
	// request must never survive past construction.
	if _, err := series.ParseInterval(cfg.BarInterval); err != nil {
		cfg.BarInterval = DefaultBarInterval
	}
	if _, err := series.ParseInterval(cfg.Period); err != nil {
		cfg.Period = DefaultPeriod
	}
	if _, err := series.ParseInterval(cfg.NativeBarInterval); err != nil {
		cfg.NativeBarInterval = defaultNativeBarInterval
	}
	if _, err := series.ParseInterval(cfg.NativePeriod); err != nil {
		cfg.NativePeriod = defaultNativePeriod
	}
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = series.CandleWindow
	}
	if cfg.AnalyticsLimit <= 0 {
		cfg.AnalyticsLimit = defaultAnalyticsLimit
	}
	if cfg.TradeBatch <= 0 {
		cfg.TradeBatch = defaultTradeBatch
	}

	bar := series.IntervalOrDefault(cfg.BarInterval, time.Minute)
	period := series.IntervalOrDefault(cfg.Period, 5*time.Minute)
	nativeBar := series.IntervalOrDefault(cfg.NativeBarInterval, time.Minute)

	f := &Feed{
		provider:     provider,
		cfg:          cfg,
		barMs:        bar.Milliseconds(),
		periodMs:     period.Milliseconds(),
		nativeBarMs:  nativeBar.Milliseconds(),
		subNative:    bar < nativeBar,
		candleLimit:  cfg.CandleLimit,
		analyticsLim: cfg.AnalyticsLimit,
	}
	f.board = f.syntheticBoard(SourceSyntheticBoot)
	return f
}

// Symbol returns the symbol this feed serves.
func (f *Feed) Symbol() string { return f.cfg.Symbol }

// SubNative reports whether candles are aggregated from raw trades
// because the requested granularity is below the provider's native
// minimum bar size.
func (f *Feed) SubNative() bool { return f.subNative }

// Board returns the current state. Series slices are shared with the
// internal board but are never mutated in place, so the caller may read
// them freely.
func (f *Feed) Board() Board {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.board
}

// Refresh fetches candles and every analytics series, runs them through
// the core transforms, and replaces the board wholesale. On any error
// the previous board is kept when it was live, or replaced by a
// synthetic fallback when nothing live was ever shown; either way the
// board is never left partially updated.
func (f *Feed) Refresh(ctx context.Context) error {
	candles, err := f.fetchCandles(ctx)
	if err != nil {
		return f.fallback(fmt.Errorf("market: refresh candles %s: %w", f.cfg.Symbol, err))
	}

	analytics, err := f.fetchAnalytics(ctx)
	if err != nil {
		return f.fallback(fmt.Errorf("market: refresh analytics %s: %w", f.cfg.Symbol, err))
	}

	board := Board{
		Symbol:      f.cfg.Symbol,
		Candles:     candles,
		Analytics:   analytics,
		Indicators:  computeIndicators(candles),
		Source:      SourceLive,
		RefreshedAt: f.cfg.Now().UnixMilli(),
	}

	f.mu.Lock()
	f.board = board
	f.mu.Unlock()
	return nil
}

// ApplyTrade folds a live trade into the candle series. It only applies
// in sub-native mode and only on top of live data; synthetic candles
// stay internally consistent until the next successful refresh replaces
// them.
func (f *Feed) ApplyTrade(tick series.Tick) {
	if !f.subNative {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.board.Source != SourceLive {
		return
	}
	f.board.Candles = series.MergeTick(f.board.Candles, tick, f.barMs)
	f.board.RefreshedAt = f.cfg.Now().UnixMilli()
}

// ApplyNativeBar folds an upstream-bucketed bar into the candle series,
// replacing any bar for the same bucket. No-op in sub-native mode.
func (f *Feed) ApplyNativeBar(bar series.Bar) {
	if f.subNative {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.board.Source != SourceLive {
		return
	}
	f.board.Candles = series.MergeNativeBar(f.board.Candles, bar, f.candleLimit)
	f.board.RefreshedAt = f.cfg.Now().UnixMilli()
}

func (f *Feed) fetchCandles(ctx context.Context) ([]series.Bar, error) {
	if f.subNative {
		ticks, err := f.provider.RecentTrades(ctx, f.cfg.Symbol, f.cfg.TradeBatch)
		if err != nil {
			return nil, err
		}
		bars := series.BuildBars(ticks, f.barMs)
		if len(bars) == 0 {
			return nil, fmt.Errorf("no usable trades in batch")
		}
		// Both paths are bounded by the configured window, not just the
		// native one.
		if len(bars) > f.candleLimit {
			bars = bars[len(bars)-f.candleLimit:]
		}
		return bars, nil
	}

	bars, err := f.provider.Klines(ctx, f.cfg.Symbol, f.cfg.BarInterval, f.candleLimit)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("empty kline batch")
	}
	return bars, nil
}

func (f *Feed) fetchAnalytics(ctx context.Context) (AnalyticsBundle, error) {
	symbol, period, limit := f.cfg.Symbol, f.cfg.NativePeriod, f.analyticsLim

	levels, err := f.provider.OpenInterestHist(ctx, symbol, period, limit)
	if err != nil {
		return AnalyticsBundle{}, err
	}
	if len(levels) == 0 {
		return AnalyticsBundle{}, fmt.Errorf("empty open interest batch")
	}
	topAccounts, err := f.provider.TopAccountRatio(ctx, symbol, period, limit)
	if err != nil {
		return AnalyticsBundle{}, err
	}
	topPositions, err := f.provider.TopPositionRatio(ctx, symbol, period, limit)
	if err != nil {
		return AnalyticsBundle{}, err
	}
	global, err := f.provider.GlobalAccountRatio(ctx, symbol, period, limit)
	if err != nil {
		return AnalyticsBundle{}, err
	}
	taker, err := f.provider.TakerVolume(ctx, symbol, period, limit)
	if err != nil {
		return AnalyticsBundle{}, err
	}
	basis, err := f.provider.Basis(ctx, symbol, period, limit)
	if err != nil {
		return AnalyticsBundle{}, err
	}

	resampledLevels := series.ResampleLevels(levels, f.periodMs)
	return AnalyticsBundle{
		OpenInterest:       resampledLevels,
		OpenInterestDelta:  series.Deltas(resampledLevels),
		TopAccountRatio:    series.ResampleRatios(topAccounts, f.periodMs),
		TopPositionRatio:   series.ResampleRatios(topPositions, f.periodMs),
		GlobalAccountRatio: series.ResampleRatios(global, f.periodMs),
		TakerVolume:        series.ResampleVolumes(taker, f.periodMs),
		Basis:              series.ResampleBasis(basis, f.periodMs),
	}, nil
}

// computeIndicators summarises the candle window into the latest
// indicator readings. NaN warm-up values never leak into the result;
// the board must stay JSON-encodable.
func computeIndicators(bars []series.Bar) IndicatorSet {
	closes := indicators.Closes(bars)
	macd, _, _ := indicators.MACD(closes)
	return IndicatorSet{
		EMA20: lastValid(indicators.EMA(closes, 20)),
		EMA50: lastValid(indicators.EMA(closes, 50)),
		MACD:  lastValid(macd),
		RSI14: lastValid(indicators.RSI(closes, 14)),
		ATR14: lastValid(indicators.ATR(bars, 14)),
	}
}

func lastValid(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		return values[i]
	}
	return 0
}

// fallback preserves a live board as last-known-good; otherwise it
// installs a fresh synthetic board flagged as a fetch failure. The
// original error is always returned to the caller.
func (f *Feed) fallback(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.board.Source != SourceLive {
		f.board = f.syntheticBoard(SourceSyntheticFallback)
	}
	return err
}

func (f *Feed) syntheticBoard(source Source) Board {
	anchor := f.cfg.Now()
	candles := series.Synthesize(f.cfg.Symbol, defaultBootCandles, time.Duration(f.barMs)*time.Millisecond, anchor)
	analytics := series.Synthesize(f.cfg.Symbol, f.analyticsLim, time.Duration(f.periodMs)*time.Millisecond, anchor)

	return Board{
		Symbol:     f.cfg.Symbol,
		Candles:    candles.Candles,
		Indicators: computeIndicators(candles.Candles),
		Analytics: AnalyticsBundle{
			OpenInterest:       analytics.OpenInterest,
			OpenInterestDelta:  series.Deltas(analytics.OpenInterest),
			TopAccountRatio:    analytics.TopAccountRatio,
			TopPositionRatio:   analytics.TopPositionRatio,
			GlobalAccountRatio: analytics.GlobalAccountRatio,
			TakerVolume:        analytics.TakerVolume,
			Basis:              analytics.Basis,
		},
		Source:      source,
		RefreshedAt: anchor.UnixMilli(),
	}
}
