package poller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketboard-api/pkg/market"
	"marketboard-api/pkg/series"
)

type stubProvider struct {
	trades chan series.Tick
}

func (s *stubProvider) Klines(ctx context.Context, symbol, interval string, limit int) ([]series.Bar, error) {
	return []series.Bar{{Time: 0, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1}}, nil
}

func (s *stubProvider) RecentTrades(ctx context.Context, symbol string, limit int) ([]series.Tick, error) {
	return []series.Tick{{Price: 100, Qty: 1, Time: 1000}}, nil
}

func (s *stubProvider) OpenInterestHist(ctx context.Context, symbol, period string, limit int) ([]series.LevelPoint, error) {
	return []series.LevelPoint{{Time: 0, Value: 1000, Notional: 1e6}}, nil
}

func (s *stubProvider) TopAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return []series.RatioPoint{{Time: 0, Long: 60, Short: 40, Ratio: 1.5}}, nil
}

func (s *stubProvider) TopPositionRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return s.TopAccountRatio(ctx, symbol, period, limit)
}

func (s *stubProvider) GlobalAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return s.TopAccountRatio(ctx, symbol, period, limit)
}

func (s *stubProvider) TakerVolume(ctx context.Context, symbol, period string, limit int) ([]series.VolumePoint, error) {
	return []series.VolumePoint{{Time: 0, Buy: 10, Sell: 5, Ratio: 2}}, nil
}

func (s *stubProvider) Basis(ctx context.Context, symbol, period string, limit int) ([]series.BasisPoint, error) {
	return []series.BasisPoint{{Time: 0, Mark: 100.5, Index: 100, Basis: 0.5}}, nil
}

func (s *stubProvider) StreamTrades(ctx context.Context, symbol string, handler func(series.Tick)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick := <-s.trades:
			handler(tick)
		}
	}
}

var (
	_ market.Provider      = (*stubProvider)(nil)
	_ market.TradeStreamer = (*stubProvider)(nil)
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within deadline")
}

func TestPollerRefreshesFeeds(t *testing.T) {
	provider := &stubProvider{trades: make(chan series.Tick)}
	feed := market.NewFeed(provider, market.FeedConfig{Symbol: "BTCUSDT", BarInterval: "1m", Period: "5m"})
	require.Equal(t, market.SourceSyntheticBoot, feed.Board().Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(provider, []*market.Feed{feed}, WithRefreshInterval(time.Hour), WithTradeStreams(false))
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return feed.Board().Source == market.SourceLive })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not stop after cancel")
	}
}

func TestPollerStreamsTradesIntoSubNativeFeeds(t *testing.T) {
	provider := &stubProvider{trades: make(chan series.Tick, 1)}
	feed := market.NewFeed(provider, market.FeedConfig{Symbol: "BTCUSDT", BarInterval: "5s", Period: "5m"})
	require.True(t, feed.SubNative())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(provider, []*market.Feed{feed}, WithRefreshInterval(time.Hour))
	go p.Run(ctx)

	// Trades only apply once the first refresh makes the board live.
	waitFor(t, func() bool { return feed.Board().Source == market.SourceLive })

	provider.trades <- series.Tick{Price: 101, Qty: 2, Time: 4000}
	waitFor(t, func() bool {
		candles := feed.Board().Candles
		return len(candles) > 0 && candles[len(candles)-1].Close == 101
	})
}
