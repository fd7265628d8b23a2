package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"marketboard-api/pkg/series"
)

// StreamTrades subscribes to the aggTrade stream for symbol and invokes
// handler for every decoded trade. Frames that fail to decode to finite
// numbers are dropped, never partially applied. The call blocks until
// ctx is cancelled or the connection breaks; reconnect policy belongs
// to the caller.
func (c *Client) StreamTrades(ctx context.Context, symbol string, handler func(series.Tick)) error {
	stream := fmt.Sprintf("%s@aggTrade", strings.ToLower(strings.TrimSpace(symbol)))
	endpoint := fmt.Sprintf("%s/%s", c.streamURL, stream)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("binance: dial trade stream: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up. The watcher must not
	// outlive this call; each reconnect attempt gets a fresh one.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("binance: read trade stream: %w", err)
		}

		tick, ok := decodeAggTrade(msg)
		if !ok {
			logx.WithContext(ctx).Errorf("binance: drop malformed aggTrade frame for %s", symbol)
			continue
		}
		handler(tick)
	}
}

func decodeAggTrade(msg []byte) (series.Tick, bool) {
	var event aggTradeEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return series.Tick{}, false
	}
	if event.EventType != "aggTrade" {
		return series.Tick{}, false
	}
	price, err := parseFloat(event.Price)
	if err != nil {
		return series.Tick{}, false
	}
	qty, err := parseFloat(event.Qty)
	if err != nil {
		return series.Tick{}, false
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return series.Tick{}, false
	}
	return series.Tick{Price: price, Qty: qty, Time: event.TradeTime}, true
}
