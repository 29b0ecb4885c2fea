/*
Package handler provides the HTTP handlers and routing setup for the Ramblur
server.

This file contains the websocket upgrade handler: rate limiting, connection
upgrading, and starting the client pumps. Authentication happens on the
socket itself (the first frame is the auth handshake), so the HTTP side has
nothing to validate beyond the origin and the rate limit.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"ramblur/internal/app/hub"
	"ramblur/internal/pkg/errs"
	"ramblur/internal/pkg/limiter"
	"ramblur/internal/pkg/logx"
	"ramblur/internal/pkg/resp"
)

// HandleWebSocket creates the HTTP HandlerFunc processing websocket
// connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := hub.NewClient(deps.Hub, conn)

		go client.WritePump()

		// ReadPump blocks until the connection dies, keeping the request
		// context alive for the auth exchange's storage lookups.
		client.ReadPump(r.Context())
	}
}
