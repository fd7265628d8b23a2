package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"marketboard-api/internal/cache"
	"marketboard-api/internal/svc"
)

type boardRequest struct {
	Symbol string `path:"symbol"`
}

// BoardHandler serves the full board payload for one symbol. Responses
// are cached in Redis for a short TTL when a cache is configured; the
// board itself always comes from the in-memory feed, so even a cold
// cache never blocks on upstream calls.
func BoardHandler(serverCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req boardRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
		feed := serverCtx.Feed(symbol)
		if feed == nil {
			http.Error(w, "unknown symbol", http.StatusNotFound)
			return
		}

		if serverCtx.Redis != nil {
			key := cache.BoardKey(symbol)
			if cached, err := serverCtx.Redis.GetCtx(r.Context(), key); err == nil && cached != "" {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(cached))
				return
			}
		}

		board := feed.Board()
		if serverCtx.Redis != nil {
			if payload, err := json.Marshal(board); err == nil {
				ttl := int(cache.BoardTTL(serverCtx.TTL).Seconds())
				if err := serverCtx.Redis.SetexCtx(r.Context(), cache.BoardKey(symbol), string(payload), ttl); err != nil {
					logx.WithContext(r.Context()).Errorf("cache board %s: %v", symbol, err)
				}
			}
		}
		httpx.OkJsonCtx(r.Context(), w, board)
	}
}
