package server

import (
	"log"

	"riptide/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedStreamHandler handles WebSocket connections for the live feed event
// stream. Anonymous viewers may subscribe; a valid bearer or query token
// just attributes the connection to a user for per-user limits.
func (s *Server) FeedStreamHandler() fiber.Handler {
	handler := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("feed stream: register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		// ReadPump blocks until the peer disconnects and must run on this
		// goroutine: returning from the fiber websocket handler closes
		// the connection.
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, _ := middleware.OptionalUserID(c)
		c.Locals("userID", userID)
		return handler(c)
	}
}
