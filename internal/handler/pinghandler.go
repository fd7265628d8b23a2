package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"
)

// PingHandler answers liveness probes.
func PingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, map[string]string{"status": "ok"})
	}
}
