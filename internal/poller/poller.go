package poller

import (
	"context"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"marketboard-api/pkg/market"
	"marketboard-api/pkg/series"
)

const (
	defaultRefreshEvery  = time.Minute
	streamBackoffInitial = time.Second
	streamBackoffMax     = 30 * time.Second
)

// Poller keeps a set of feeds live: each feed gets a refresh loop, and
// sub-native feeds additionally get a trade stream when the provider
// supports one.
type Poller struct {
	provider     market.Provider
	feeds        []*market.Feed
	refreshEvery time.Duration
	streamTrades bool
}

// Option customises a Poller.
type Option func(*Poller)

// WithRefreshInterval overrides the refresh cadence.
func WithRefreshInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.refreshEvery = d
		}
	}
}

// WithTradeStreams toggles live trade streaming on sub-native feeds.
func WithTradeStreams(enabled bool) Option {
	return func(p *Poller) {
		p.streamTrades = enabled
	}
}

// New constructs a poller over the given feeds.
func New(provider market.Provider, feeds []*market.Feed, opts ...Option) *Poller {
	p := &Poller{
		provider:     provider,
		feeds:        feeds,
		refreshEvery: defaultRefreshEvery,
		streamTrades: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drives all feeds until ctx is cancelled. Each feed is refreshed
// once immediately, then on the configured cadence. Run blocks.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, feed := range p.feeds {
		feed := feed

		wg.Add(1)
		go func() {
			defer wg.Done()
			p.refreshLoop(ctx, feed)
		}()

		if p.streamTrades && feed.SubNative() {
			streamer, ok := p.provider.(market.TradeStreamer)
			if !ok {
				logx.Infof("poller: provider has no trade stream, %s stays poll-only", feed.Symbol())
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.streamLoop(ctx, streamer, feed)
			}()
		}
	}

	wg.Wait()
}

func (p *Poller) refreshLoop(ctx context.Context, feed *market.Feed) {
	ticker := time.NewTicker(p.refreshEvery)
	defer ticker.Stop()

	p.refresh(ctx, feed)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx, feed)
		}
	}
}

func (p *Poller) refresh(ctx context.Context, feed *market.Feed) {
	start := time.Now()
	if err := feed.Refresh(ctx); err != nil {
		if ctx.Err() == nil {
			logx.WithContext(ctx).Errorf("poller: refresh %s: %v (board source now %s)",
				feed.Symbol(), err, feed.Board().Source)
		}
		return
	}
	logx.WithContext(ctx).Infof("poller: refreshed %s in %dms", feed.Symbol(), time.Since(start).Milliseconds())
}

// streamLoop keeps a trade stream alive with doubling backoff between
// reconnects. Backoff resets after a connection that lived long enough
// to be considered healthy.
func (p *Poller) streamLoop(ctx context.Context, streamer market.TradeStreamer, feed *market.Feed) {
	backoff := streamBackoffInitial
	for {
		if ctx.Err() != nil {
			return
		}

		connected := time.Now()
		err := streamer.StreamTrades(ctx, feed.Symbol(), func(tick series.Tick) {
			feed.ApplyTrade(tick)
		})
		if ctx.Err() != nil {
			return
		}
		logx.WithContext(ctx).Errorf("poller: trade stream %s: %v, reconnecting in %s", feed.Symbol(), err, backoff)

		if time.Since(connected) > streamBackoffMax {
			backoff = streamBackoffInitial
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < streamBackoffMax {
			backoff *= 2
		}
	}
}
