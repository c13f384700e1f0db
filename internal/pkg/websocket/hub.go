package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/rs/zerolog"
)

// Event types pushed to subscribers
const (
	EventMessage = "message"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients organized by chat ID
	clients map[int64]map[*Client]bool

	// Events queued for delivery
	broadcast chan *Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed by Stop
	done chan struct{}
	once sync.Once

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Logger for Hub operations
	logger zerolog.Logger
}

// Event is a chat message as delivered over the websocket
type Event struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat"`
	SenderID  int64     `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// BroadcastMessage queues a stored chat message for the chat's connected clients.
// It never blocks the caller; events are dropped once the hub is stopped or saturated.
func (h *Hub) BroadcastMessage(msg *models.Message) {
	if msg == nil {
		return
	}
	event := &Event{
		Type:      EventMessage,
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}

	select {
	case <-h.done:
	case h.broadcast <- event:
	default:
		h.logger.Warn().Int64("chatID", msg.ChatID).Int64("messageID", msg.ID).
			Msg("Broadcast queue full, dropping message")
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	chatID := client.chatID
	if _, ok := h.clients[chatID]; !ok {
		h.clients[chatID] = make(map[*Client]bool)
	}
	h.clients[chatID][client] = true

	h.logger.Info().
		Int64("chatID", chatID).
		Int64("userID", client.userID).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	chatID := client.chatID
	clients, ok := h.clients[chatID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// If no more clients in this chat, clean up
	if len(clients) == 0 {
		delete(h.clients, chatID)
	}

	h.logger.Info().
		Int64("chatID", chatID).
		Int64("userID", client.userID).
		Msg("Client unregistered")
}

// broadcastEvent sends an event to all clients of its chat
func (h *Hub) broadcastEvent(event *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[event.ChatID]
	if !ok {
		h.logger.Debug().
			Int64("chatID", event.ChatID).
			Msg("No clients in chat for broadcast")
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("chatID", event.ChatID).
			Msg("Failed to marshal event for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Send buffer is full, the client is too slow to keep
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Int64("chatID", event.ChatID).
		Int("clientCount", len(clients)).
		Msg("Message broadcasted to chat")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// GetClientsCount returns the number of connected clients for a chat
func (h *Hub) GetClientsCount(chatID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[chatID]; ok {
		return len(clients)
	}
	return 0
}
