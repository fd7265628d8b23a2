// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"marketboard-api/internal/config"
	"marketboard-api/internal/handler"
	"marketboard-api/internal/poller"
	"marketboard-api/internal/svc"
	"marketboard-api/pkg/market"

	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/marketboard.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(*cfg)
	handler.RegisterHandlers(server, ctx)

	feeds := make([]*market.Feed, 0, len(ctx.Feeds))
	for _, feed := range ctx.Feeds {
		feeds = append(feeds, feed)
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.New(ctx.DefaultMarket, feeds,
		poller.WithRefreshInterval(time.Duration(cfg.Board.RefreshSeconds)*time.Second),
		poller.WithTradeStreams(cfg.Board.StreamTrades),
	).Run(pollCtx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
