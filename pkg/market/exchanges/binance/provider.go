package binance

import (
	"context"
	"net/http"
	"time"

	"marketboard-api/pkg/market"
	"marketboard-api/pkg/series"
)

const defaultProviderTimeout = 8 * time.Second

// Provider adapts the Binance client to the generic market.Provider and
// market.TradeStreamer contracts.
type Provider struct {
	client  *Client
	timeout time.Duration
}

type providerConfig struct {
	timeout       time.Duration
	clientOptions []Option
}

// ProviderOption customises the Binance provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// NewProvider constructs a Binance market provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{timeout: defaultProviderTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:  NewClient(cfg.clientOptions...),
		timeout: cfg.timeout,
	}
}

func init() {
	market.RegisterProvider("binance", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.BaseURL != "" {
			clientOptions = append(clientOptions, WithBaseURL(cfg.BaseURL))
		}
		if cfg.StreamURL != "" {
			clientOptions = append(clientOptions, WithStreamURL(cfg.StreamURL))
		}
		if cfg.MaxRetries > 0 {
			clientOptions = append(clientOptions, WithMaxRetries(cfg.MaxRetries))
		}
		if len(clientOptions) > 0 {
			opts = append(opts, WithClientOptions(clientOptions...))
		}
		return NewProvider(opts...), nil
	})
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, p.timeout)
}

// Klines implements market.Provider.
func (p *Provider) Klines(ctx context.Context, symbol, interval string, limit int) ([]series.Bar, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetKlines(ctx, symbol, interval, limit)
}

// RecentTrades implements market.Provider.
func (p *Provider) RecentTrades(ctx context.Context, symbol string, limit int) ([]series.Tick, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetAggTrades(ctx, symbol, limit)
}

// OpenInterestHist implements market.Provider.
func (p *Provider) OpenInterestHist(ctx context.Context, symbol, period string, limit int) ([]series.LevelPoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetOpenInterestHist(ctx, symbol, period, limit)
}

// TopAccountRatio implements market.Provider.
func (p *Provider) TopAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetTopAccountRatio(ctx, symbol, period, limit)
}

// TopPositionRatio implements market.Provider.
func (p *Provider) TopPositionRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetTopPositionRatio(ctx, symbol, period, limit)
}

// GlobalAccountRatio implements market.Provider.
func (p *Provider) GlobalAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetGlobalAccountRatio(ctx, symbol, period, limit)
}

// TakerVolume implements market.Provider.
func (p *Provider) TakerVolume(ctx context.Context, symbol, period string, limit int) ([]series.VolumePoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetTakerVolume(ctx, symbol, period, limit)
}

// Basis implements market.Provider.
func (p *Provider) Basis(ctx context.Context, symbol, period string, limit int) ([]series.BasisPoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetBasis(ctx, symbol, period, limit)
}

// StreamTrades implements market.TradeStreamer. No timeout is applied:
// the stream lives until ctx is cancelled.
func (p *Provider) StreamTrades(ctx context.Context, symbol string, handler func(series.Tick)) error {
	return p.client.StreamTrades(ctx, symbol, handler)
}

var (
	_ market.Provider      = (*Provider)(nil)
	_ market.TradeStreamer = (*Provider)(nil)
)
