package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketboard-api/internal/cli"
	"marketboard-api/internal/config"
	"marketboard-api/internal/poller"
	"marketboard-api/pkg/market"

	// Import for side-effects: registers the binance provider
	_ "marketboard-api/pkg/market/exchanges/binance"
)

const shutdownTimeout = 10 * time.Second // Grace period for shutdown

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting board poller...")

	// Load application configuration
	configPath := "etc/marketboard.yaml"
	appCfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("[main] Warning: Failed to load app config: %v", err)
		log.Printf("[main] Using default configuration")
		appCfg = &config.Config{
			Env: "test",
			TTL: config.CacheTTL{Short: 10, Medium: 60, Long: 300},
			Board: config.BoardConf{
				Symbols:        []string{"BTCUSDT"},
				BarInterval:    "1m",
				Period:         "5m",
				RefreshSeconds: 60,
				StreamTrades:   true,
			},
		}
		if err := appCfg.Validate(); err != nil {
			log.Fatalf("[main] Default configuration invalid: %v", err)
		}
	}

	// Log configuration information
	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	marketCfg := appCfg.Market.Value
	marketPath := appCfg.Market.File
	if marketCfg == nil {
		marketCfg = config.MustLoadMarket()
		if marketPath == "" {
			marketPath = "etc/market.yaml (default)"
		}
	}
	log.Printf("  - Market Config Path: %s", marketPath)

	// Build market providers
	providers, err := marketCfg.BuildProviders()
	if err != nil {
		log.Fatalf("[main] Failed to build market providers: %v", err)
	}
	provider, ok := providers[marketCfg.Default]
	if !ok {
		log.Fatalf("[main] Default market provider %q not found", marketCfg.Default)
	}

	// One feed per tracked symbol
	feeds := make([]*market.Feed, 0, len(appCfg.Board.Symbols))
	for _, symbol := range appCfg.Board.Symbols {
		feeds = append(feeds, market.NewFeed(provider, market.FeedConfig{
			Symbol:         symbol,
			BarInterval:    appCfg.Board.BarInterval,
			Period:         appCfg.Board.Period,
			CandleLimit:    appCfg.Board.CandleLimit,
			AnalyticsLimit: appCfg.Board.AnalyticsLimit,
		}))
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := poller.New(provider, feeds,
		poller.WithRefreshInterval(time.Duration(appCfg.Board.RefreshSeconds)*time.Second),
		poller.WithTradeStreams(appCfg.Board.StreamTrades),
	)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	log.Println("[main] Board poller started. Press Ctrl+C to stop.")

	// Wait for signal
	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	// Give tasks time to complete current work
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	select {
	case <-done:
		log.Println("[main] All tasks stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Board poller stopped")
}
