package websocket

import (
	"context"
	"strconv"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/middleware"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ChatJoiner decides whether a caller may subscribe to a chat
type ChatJoiner interface {
	JoinChat(ctx context.Context, actor *authz.Actor, chatID int64) (*models.GroupChat, error)
}

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	chats    ChatJoiner
	messages *MessageHandler
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. A nil messages handler makes
// sockets receive-only.
func NewHandler(hub *Hub, chats ChatJoiner, messages *MessageHandler, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		chats:    chats,
		messages: messages,
		upgrader: newUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to a group chat
// @Description Upgrades to a websocket that receives every message stored in the chat. Frames of the form {"content": "..."} sent by the client are stored as messages from the caller.
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group chat ID"
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse "Invalid chat ID"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the chat"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /community/group-chats/{id}/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || chatID <= 0 {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid chat ID"))
		return
	}

	actor := middleware.GetActor(c)
	if !actor.Authenticated() {
		middleware.HandleAPIError(c, apperrors.ErrUnauthorized)
		return
	}

	if _, err := h.chats.JoinChat(c.Request.Context(), actor, chatID); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("chatID", chatID).
			Int64("userID", actor.UserID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		actor:   actor,
		userID:  actor.UserID,
		chatID:  chatID,
		inbound: h.messages,
		logger:  h.logger,
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("chatID", chatID).
		Int64("userID", actor.UserID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
