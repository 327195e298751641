package handler

import (
	"strings"

	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/pkg/serverutils"
	"turingtest-be/internal/pkg/token"
	internalWS "turingtest-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatEventsHandler streams the caller's domain events over a websocket.
type ChatEventsHandler struct {
	hub    *internalWS.Hub
	tokens token.ITokenService
	logger logger.ILogger
}

func NewChatEventsHandler(hub *internalWS.Hub, tokens token.ITokenService, log logger.ILogger) *ChatEventsHandler {
	return &ChatEventsHandler{
		hub:    hub,
		tokens: tokens,
		logger: log,
	}
}

// ServeWs authenticates the handshake, then upgrades.
func (h *ChatEventsHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake, so the query
	// param is checked first.
	tokenStr := strings.TrimSpace(c.Query("token"))
	if tokenStr == "" {
		tokenStr = serverutils.TokenFromRequest(c)
	}

	identity, err := serverutils.Authenticate(h.tokens, h.logger, tokenStr)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID := identity.Id
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatEventsHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("ChatEventsHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *ChatEventsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chats", h.ServeWs)
}
