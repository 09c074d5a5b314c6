// handlers/websocket.go
package handlers

import (
	"log"

	"duel-arena/middleware"
	"duel-arena/models"
	"duel-arena/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

// WebSocketHandler upgrades gateway-authenticated connections and
// attaches them to the push hub. The socket is push-only: clients talk
// to the service over REST and listen here.
type WebSocketHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewWebSocketHandler(db *gorm.DB, hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{DB: db, Hub: hub}
}

func (h *WebSocketHandler) WebSocketMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	defer func() {
		_ = c.Close()
	}()

	externalID, _ := c.Locals("user_id").(string)
	if externalID == "" {
		return
	}

	var user models.DuelUser
	if err := h.DB.First(&user, "external_user_id = ?", externalID).Error; err != nil {
		log.Printf("[WS] rejecting socket for unknown user %s: %v", externalID, err)
		return
	}

	client := h.Hub.Register(user.ID, c)
	defer h.Hub.Unregister(client)
	log.Printf("[WS] %s connected", user.Username)

	// Drain the socket until the client goes away; inbound frames are
	// ignored.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Printf("[WS] %s disconnected", user.Username)
			return
		}
	}
}

func SetupWebSocketRoutes(app *fiber.App, h *WebSocketHandler) {
	app.Get("/ws", middleware.UserContextMiddleware(), h.WebSocketMiddleware, websocket.New(h.HandleWebSocket))
}
