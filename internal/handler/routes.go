package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"marketboard-api/internal/svc"
)

// RegisterHandlers wires the dashboard API routes.
func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes([]rest.Route{
		{
			Method:  http.MethodGet,
			Path:    "/ping",
			Handler: PingHandler(),
		},
		{
			Method:  http.MethodGet,
			Path:    "/api/v1/symbols",
			Handler: SymbolsHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/api/v1/board/:symbol",
			Handler: BoardHandler(serverCtx),
		},
	})
}
