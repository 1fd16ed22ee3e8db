package server

import (
	"log"

	"firenet/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketFeedHandler streams post events to the client. Anonymous viewers
// are accepted; the feed is read-only.
func (s *Server) WebSocketFeedHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		handle, _ := conn.Locals("userHandle").(string)

		client, err := s.hub.Register(handle, conn)
		if err != nil {
			log.Printf("WebSocket feed: failed to register %q: %v", handle, err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
			_ = conn.Close()
			return
		}

		ready, _ := notifications.Event{
			Type:    "connected",
			Payload: map[string]any{"handle": handle},
		}.Encode()
		client.TrySend(ready)

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
