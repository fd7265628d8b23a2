package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketboard-api/pkg/series"
)

type fakeProvider struct {
	bars   []series.Bar
	ticks  []series.Tick
	levels []series.LevelPoint
	ratios []series.RatioPoint
	vols   []series.VolumePoint
	basis  []series.BasisPoint

	failKlines    error
	failTrades    error
	failAnalytics error

	gotInterval string
	gotPeriod   string
}

func (p *fakeProvider) Klines(ctx context.Context, symbol, interval string, limit int) ([]series.Bar, error) {
	p.gotInterval = interval
	return p.bars, p.failKlines
}

func (p *fakeProvider) RecentTrades(ctx context.Context, symbol string, limit int) ([]series.Tick, error) {
	return p.ticks, p.failTrades
}

func (p *fakeProvider) OpenInterestHist(ctx context.Context, symbol, period string, limit int) ([]series.LevelPoint, error) {
	p.gotPeriod = period
	return p.levels, p.failAnalytics
}

func (p *fakeProvider) TopAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return p.ratios, p.failAnalytics
}

func (p *fakeProvider) TopPositionRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return p.ratios, p.failAnalytics
}

func (p *fakeProvider) GlobalAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return p.ratios, p.failAnalytics
}

func (p *fakeProvider) TakerVolume(ctx context.Context, symbol, period string, limit int) ([]series.VolumePoint, error) {
	return p.vols, p.failAnalytics
}

func (p *fakeProvider) Basis(ctx context.Context, symbol, period string, limit int) ([]series.BasisPoint, error) {
	return p.basis, p.failAnalytics
}

func healthyProvider() *fakeProvider {
	return &fakeProvider{
		bars: []series.Bar{
			{Time: 0, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 12},
			{Time: 60000, Open: 100.5, High: 102, Low: 100, Close: 101, Volume: 8},
		},
		ticks: []series.Tick{
			{Price: 100, Qty: 1, Time: 1000},
			{Price: 101, Qty: 2, Time: 31000},
		},
		levels: []series.LevelPoint{
			{Time: 0, Value: 1000, Notional: 50000},
			{Time: 600000, Value: 1100, Notional: 56000},
		},
		ratios: []series.RatioPoint{
			{Time: 0, Long: 55, Short: 45, Ratio: 55.0 / 45.0},
			{Time: 600000, Long: 60, Short: 40, Ratio: 1.5},
		},
		vols: []series.VolumePoint{
			{Time: 0, Buy: 100, Sell: 80, Ratio: 1.25},
			{Time: 600000, Buy: 90, Sell: 100, Ratio: 0.9},
		},
		basis: []series.BasisPoint{
			{Time: 0, Mark: 100.2, Index: 100, Basis: 0.2},
			{Time: 600000, Mark: 100.1, Index: 100.3, Basis: -0.2},
		},
	}
}

func fixedNow() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestFeedBootstrapsSynthetic(t *testing.T) {
	feed := NewFeed(healthyProvider(), FeedConfig{Symbol: "BTCUSDT", BarInterval: "1m", Period: "5m", Now: fixedNow})

	board := feed.Board()
	require.Equal(t, SourceSyntheticBoot, board.Source)
	require.True(t, board.Source.Synthetic())
	require.NotEmpty(t, board.Candles)
	require.NotEmpty(t, board.Analytics.OpenInterest)
	require.Len(t, board.Analytics.OpenInterestDelta, len(board.Analytics.OpenInterest))
	require.Zero(t, board.Analytics.OpenInterestDelta[0].Increase)
}

func TestFeedRefreshReplacesWholesale(t *testing.T) {
	provider := healthyProvider()
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "1m", Period: "5m", Now: fixedNow})

	require.NoError(t, feed.Refresh(context.Background()))

	board := feed.Board()
	require.Equal(t, SourceLive, board.Source)
	require.Equal(t, provider.bars, board.Candles)

	// Native samples are 10m apart; a 5m period inserts one point per gap.
	require.Len(t, board.Analytics.OpenInterest, 3)
	require.InDelta(t, 1050.0, board.Analytics.OpenInterest[1].Value, 1e-9)

	// The delta series is recomputed from the resampled levels.
	require.Len(t, board.Analytics.OpenInterestDelta, 3)
	require.InDelta(t, 50.0, board.Analytics.OpenInterestDelta[1].Increase, 1e-9)

	// Ratio invariant holds at inserted points.
	for _, p := range board.Analytics.TopAccountRatio {
		require.InDelta(t, p.Long/p.Short, p.Ratio, 1e-9)
	}
}

func TestFeedRefreshFailureFallsBackToSynthetic(t *testing.T) {
	provider := healthyProvider()
	provider.failKlines = errors.New("boom")
	feed := NewFeed(provider, FeedConfig{Symbol: "ETHUSDT", BarInterval: "1m", Period: "5m", Now: fixedNow})

	err := feed.Refresh(context.Background())
	require.Error(t, err)

	board := feed.Board()
	require.Equal(t, SourceSyntheticFallback, board.Source)
	require.NotEmpty(t, board.Candles)
}

func TestFeedRefreshFailureKeepsLastKnownGood(t *testing.T) {
	provider := healthyProvider()
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "1m", Period: "5m", Now: fixedNow})
	require.NoError(t, feed.Refresh(context.Background()))
	live := feed.Board()

	provider.failAnalytics = errors.New("region restricted")
	require.Error(t, feed.Refresh(context.Background()))

	board := feed.Board()
	require.Equal(t, SourceLive, board.Source)
	require.Equal(t, live.Candles, board.Candles)
	require.Equal(t, live.Analytics, board.Analytics)
}

func TestFeedRefreshNeverPartiallyUpdates(t *testing.T) {
	provider := healthyProvider()
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "1m", Period: "5m", Now: fixedNow})
	require.NoError(t, feed.Refresh(context.Background()))
	before := feed.Board()

	// Candles succeed, analytics fail: nothing of the new cycle lands.
	provider.bars = []series.Bar{{Time: 120000, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}}
	provider.failAnalytics = errors.New("malformed payload")
	require.Error(t, feed.Refresh(context.Background()))
	require.Equal(t, before.Candles, feed.Board().Candles)
}

func TestFeedSubNativeBuildsBarsFromTrades(t *testing.T) {
	provider := healthyProvider()
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "30s", Period: "5m", Now: fixedNow})
	require.True(t, feed.SubNative())

	require.NoError(t, feed.Refresh(context.Background()))
	board := feed.Board()
	require.Equal(t, SourceLive, board.Source)
	// Ticks at 1s and 31s land in distinct 30s buckets.
	require.Len(t, board.Candles, 2)
	require.Equal(t, int64(0), board.Candles[0].Time)
	require.Equal(t, int64(30000), board.Candles[1].Time)
}

func TestFeedApplyTrade(t *testing.T) {
	provider := healthyProvider()
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "30s", Period: "5m", Now: fixedNow})
	require.NoError(t, feed.Refresh(context.Background()))

	feed.ApplyTrade(series.Tick{Price: 102, Qty: 1, Time: 32000})
	board := feed.Board()
	require.Len(t, board.Candles, 2)
	require.InDelta(t, 102.0, board.Candles[1].Close, 1e-9)
	require.InDelta(t, 3.0, board.Candles[1].Volume, 1e-9)
}

func TestFeedApplyTradeIgnoredOnSyntheticBoard(t *testing.T) {
	feed := NewFeed(healthyProvider(), FeedConfig{Symbol: "BTCUSDT", BarInterval: "30s", Period: "5m", Now: fixedNow})
	before := feed.Board()
	feed.ApplyTrade(series.Tick{Price: 102, Qty: 1, Time: 32000})
	require.Equal(t, before.Candles, feed.Board().Candles)
}

func TestFeedApplyNativeBar(t *testing.T) {
	provider := healthyProvider()
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "1m", Period: "5m", Now: fixedNow})
	require.NoError(t, feed.Refresh(context.Background()))
	require.False(t, feed.SubNative())

	update := series.Bar{Time: 60000, Open: 100.5, High: 103, Low: 100, Close: 102.8, Volume: 11}
	feed.ApplyNativeBar(update)
	board := feed.Board()
	require.Len(t, board.Candles, 2)
	require.Equal(t, update, board.Candles[1])
}

func TestFeedIndicatorsStayFinite(t *testing.T) {
	feed := NewFeed(healthyProvider(), FeedConfig{Symbol: "BTCUSDT", BarInterval: "1m", Period: "5m", Now: fixedNow})

	// The synthetic boot window is long enough for every indicator.
	ind := feed.Board().Indicators
	require.Greater(t, ind.EMA20, 0.0)
	require.Greater(t, ind.EMA50, 0.0)
	require.Greater(t, ind.RSI14, 0.0)
	require.Greater(t, ind.ATR14, 0.0)

	// A two-bar live window cannot warm up any of the indicators; the
	// readings degrade to zero rather than NaN.
	require.NoError(t, feed.Refresh(context.Background()))
	ind = feed.Board().Indicators
	require.Zero(t, ind.EMA20)
	require.Zero(t, ind.MACD)
	require.Zero(t, ind.ATR14)
}

func TestFeedDefaultsOnUnparseableIntervals(t *testing.T) {
	provider := healthyProvider()
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "junk", Period: "also junk", Now: fixedNow})
	// The documented defaults are 1m bars and a 5m analytics period;
	// 1m is not below the native minimum, so native klines are used.
	require.False(t, feed.SubNative())

	// The substituted defaults go upstream too: the provider must see
	// the normalized interval strings, never the raw input, so a bad
	// config stays a one-time degradation instead of a permanent
	// refresh failure.
	require.NoError(t, feed.Refresh(context.Background()))
	require.Equal(t, "1m", provider.gotInterval)
	require.Equal(t, "5m", provider.gotPeriod)
	require.Equal(t, SourceLive, feed.Board().Source)
}

func TestFeedSubNativeHonorsCandleLimit(t *testing.T) {
	provider := healthyProvider()
	provider.ticks = []series.Tick{
		{Price: 100, Qty: 1, Time: 1000},
		{Price: 101, Qty: 2, Time: 31000},
		{Price: 102, Qty: 1, Time: 61000},
	}
	feed := NewFeed(provider, FeedConfig{Symbol: "BTCUSDT", BarInterval: "30s", Period: "5m", CandleLimit: 2, Now: fixedNow})
	require.True(t, feed.SubNative())

	require.NoError(t, feed.Refresh(context.Background()))
	board := feed.Board()
	// Three 30s buckets aggregated, oldest dropped by the window.
	require.Len(t, board.Candles, 2)
	require.Equal(t, int64(30000), board.Candles[0].Time)
	require.Equal(t, int64(60000), board.Candles[1].Time)
}
