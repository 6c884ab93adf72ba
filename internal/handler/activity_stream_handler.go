package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
)

// ActivityStreamHandler upgrades dashboard clients to a websocket fed by the
// live activity fan-out.
type ActivityStreamHandler struct {
	stream service.ActivityStreamService
	logger zerolog.Logger
}

// NewActivityStreamHandler constructs the handler.
func NewActivityStreamHandler(stream service.ActivityStreamService, logger zerolog.Logger) *ActivityStreamHandler {
	return &ActivityStreamHandler{
		stream: stream,
		logger: logger.With().Str("component", "activity_stream_handler").Logger(),
	}
}

// Register binds the live stream route under the provided router group.
func (h *ActivityStreamHandler) Register(router fiber.Router) {
	router.Use("/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/live", websocket.New(h.handleConnection))
}

func (h *ActivityStreamHandler) handleConnection(conn *websocket.Conn) {
	userID := conn.Locals("user_id")
	if userID == nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "authentication required"))
		_ = conn.Close()
		return
	}

	events, cleanup := h.stream.Subscribe()
	defer cleanup()

	h.logger.Info().Interface("user_id", userID).Msg("activity stream connected")
	defer h.logger.Info().Interface("user_id", userID).Msg("activity stream disconnected")

	// Reader goroutine detects client disconnects; the writer loop below
	// forwards events until the subscription or the connection closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				_ = conn.Close()
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				_ = conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}
