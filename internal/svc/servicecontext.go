package svc

import (
	"log"

	"github.com/zeromicro/go-zero/core/stores/redis"

	"marketboard-api/internal/cache"
	"marketboard-api/internal/config"
	marketpkg "marketboard-api/pkg/market"
	_ "marketboard-api/pkg/market/exchanges/binance"
)

type ServiceContext struct {
	Config config.Config
	TTL    cache.TTLSet

	MarketConfig    *marketpkg.Config
	MarketProviders map[string]marketpkg.Provider
	DefaultMarket   marketpkg.Provider

	// Feeds holds one state machine per tracked symbol, keyed by the
	// upper-cased symbol.
	Feeds map[string]*marketpkg.Feed

	// Optional Redis cache for rendered payloads; nil when not configured.
	Redis *redis.Redis
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config: c,
		TTL:    cache.NewTTLSet(c.TTL),
	}

	marketCfg := c.Market.Value
	if marketCfg == nil {
		marketCfg = config.MustLoadMarket()
	}

	providers, err := marketCfg.BuildProviders()
	if err != nil {
		log.Fatalf("failed to build market providers: %v", err)
	}
	svc.MarketConfig = marketCfg
	svc.MarketProviders = providers
	if marketCfg.Default != "" {
		svc.DefaultMarket = providers[marketCfg.Default]
	}
	if svc.DefaultMarket == nil {
		log.Fatalf("market config must name a default provider")
	}

	svc.Feeds = make(map[string]*marketpkg.Feed, len(c.Board.Symbols))
	for _, symbol := range c.Board.Symbols {
		svc.Feeds[symbol] = marketpkg.NewFeed(svc.DefaultMarket, marketpkg.FeedConfig{
			Symbol:         symbol,
			BarInterval:    c.Board.BarInterval,
			Period:         c.Board.Period,
			CandleLimit:    c.Board.CandleLimit,
			AnalyticsLimit: c.Board.AnalyticsLimit,
		})
	}

	if c.Redis.Host != "" {
		svc.Redis = redis.MustNewRedis(c.Redis)
	}
	return svc
}

// Feed returns the feed for symbol, or nil when the symbol is not tracked.
func (s *ServiceContext) Feed(symbol string) *marketpkg.Feed {
	return s.Feeds[symbol]
}
