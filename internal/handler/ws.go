package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/service"
	ws "github.com/vid2scene/api/internal/websocket"
)

type StreamHandler struct {
	sessions *service.SessionService
	hub      *ws.Hub
}

func NewStreamHandler(sessions *service.SessionService, hub *ws.Hub) *StreamHandler {
	return &StreamHandler{sessions: sessions, hub: hub}
}

// Upgrade rejects non-WebSocket requests and unknown sessions before the
// handshake.
func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := h.sessions.Get(c.Params("sessionId")); err != nil {
		return writeError(c, err)
	}
	return c.Next()
}

// Stream handles GET /ws/sessions/:sessionId
func (h *StreamHandler) Stream() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		sessionID := c.Params("sessionId")
		ctrl, err := h.sessions.Get(sessionID)
		if err != nil {
			return
		}
		h.hub.HandleConnection(c, sessionID, model.WSStatusMessage{
			Type:   model.WSMessageTypeStatus,
			Status: ctrl.Status(),
		})
	})
}
