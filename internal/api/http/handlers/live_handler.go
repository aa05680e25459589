package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/realtime"
)

// LiveHandler upgrades consoles onto the complaint feed.
type LiveHandler struct {
	hub *realtime.Hub
}

// NewLiveHandler constructs handler.
func NewLiveHandler(hub *realtime.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// RequireUpgrade rejects plain HTTP requests to the feed.
func (h *LiveHandler) RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Complaints GET /ws/complaints. Frames only flow server to client; reads just
// detect disconnects.
func (h *LiveHandler) Complaints() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.hub.Register(conn)
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
