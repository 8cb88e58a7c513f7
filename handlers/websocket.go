package handlers

import (
	"context"
	"net/http"

	"churn-dashboard/middleware"
	"churn-dashboard/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveHistory streams prediction records appended to the caller's session
// while the History page is open.
func LiveHistory(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Read pump: detect client disconnect
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates, stop, err := sess.Subscribe(ctx)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("history subscribe failed")
		return
	}
	defer stop()

	telemetry.LiveClients.Inc()
	defer telemetry.LiveClients.Dec()

	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-updates:
			if !ok {
				return
			}
			err := conn.WriteJSON(gin.H{
				"type": "history_append",
				"data": entry,
			})
			if err != nil {
				log.Warn().Err(err).Msg("ws write error")
				return
			}
		}
	}
}
