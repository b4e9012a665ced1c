package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cetlabs/cetexam-backend/internal/config"
	"github.com/cetlabs/cetexam-backend/internal/middleware"
	"github.com/cetlabs/cetexam-backend/internal/model"
	ws "github.com/cetlabs/cetexam-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams graded-result events to admin dashboards over
// WebSocket, fed by the Redis result monitor channel.
type MonitorHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ResultStream godoc
// WS /ws/v1/admin/results/stream
// Pushes a GradedNotice for every submission graded while connected.
// Admin only (enforced by middleware on the route).
func (h *MonitorHandler) ResultStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.Role != string(model.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if h.rdb == nil {
		ws.WriteError(conn, "result monitoring unavailable")
		return
	}

	ctx := c.Request.Context()
	sub := h.rdb.Subscribe(ctx, config.CacheKey.ResultMonitorChannel())
	defer sub.Close()

	h.log.Info().Str("admin_id", claims.UserID).Msg("monitor connected")

	// Drain client frames so closes are noticed; the stream itself is
	// server -> client only.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			h.log.Info().Str("admin_id", claims.UserID).Msg("monitor disconnected")
			return
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.ResultGradedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.Warn().Err(err).Msg("bad graded event payload")
				continue
			}
			if err := ws.WriteTyped(conn, ws.GradedNotice{Event: ws.EventGraded, Result: event}); err != nil {
				return
			}
		}
	}
}
