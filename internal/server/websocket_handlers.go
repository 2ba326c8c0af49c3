package server

import (
	"encoding/json"
	"log/slog"

	"brewlog/internal/middleware"
	"brewlog/internal/models"
	"brewlog/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set headers on
// a WebSocket upgrade, so they trade their token for a short-lived ticket
// passed as ?ticket= instead.
// @Summary Issue WebSocket ticket
// @Tags realtime
// @Produce json
// @Success 200 {object} object{ticket=string}
// @Security BearerAuth
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	ticket, err := s.auth.IssueWSTicket(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}

// WebsocketHandler streams the caller's notifications. Each connection gets
// a hello event on connect and every notification published afterwards.
// @Summary Notification stream
// @Description Upgrades to a WebSocket. Authenticate with a bearer token or a single-use ticket.
// @Tags realtime
// @Param ticket query string false "Ticket from /ws/ticket"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			msg, _ := json.Marshal(fiber.Map{"error": err.Error()})
			_ = conn.WriteMessage(websocket.TextMessage, msg)
			_ = conn.Close()
			return
		}

		hello, _ := json.Marshal(notifications.Event{
			Type:    "connected",
			Payload: fiber.Map{"user_id": userID},
		})
		client.TrySend(hello)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
