package handler

import (
	"net/http"
	"sort"

	"github.com/zeromicro/go-zero/rest/httpx"

	"marketboard-api/internal/svc"
)

type symbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// SymbolsHandler lists the tracked symbols in stable order.
func SymbolsHandler(serverCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbols := make([]string, 0, len(serverCtx.Feeds))
		for symbol := range serverCtx.Feeds {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		httpx.OkJsonCtx(r.Context(), w, symbolsResponse{Symbols: symbols})
	}
}
