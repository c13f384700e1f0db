package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/rs/zerolog"
)

// MessagePoster stores a chat message on behalf of a caller. Storing a
// message is what triggers its broadcast.
type MessagePoster interface {
	Create(ctx context.Context, actor *authz.Actor, item *models.Message) (*models.Message, error)
}

// incomingMessage is what a client may type into the socket
type incomingMessage struct {
	Content string `json:"content"`
}

// MessageHandler persists messages sent over a websocket
type MessageHandler struct {
	poster  MessagePoster
	timeout time.Duration
	logger  zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(poster MessagePoster, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		poster:  poster,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// HandleIncomingMessage stores a raw client frame as a message in the client's chat.
// Sender and chat always come from the connection, never from the frame.
func (h *MessageHandler) HandleIncomingMessage(client *Client, raw []byte) {
	var in incomingMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		h.logger.Debug().
			Err(err).
			Int64("userID", client.userID).
			Int64("chatID", client.chatID).
			Msg("Failed to unmarshal client message")
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	msg, err := h.poster.Create(ctx, client.actor, &models.Message{
		ChatID:   client.chatID,
		SenderID: client.userID,
		Content:  in.Content,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Int64("chatID", client.chatID).
			Int64("senderID", client.userID).
			Msg("Failed to save WebSocket message")
		return
	}

	h.logger.Debug().
		Int64("messageID", msg.ID).
		Int64("chatID", msg.ChatID).
		Msg("WebSocket message saved")
}
