package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients organized by topic ID
	clients map[int64]map[*Client]bool

	// Channel for inbound messages from clients
	broadcast chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Mutex for message listeners
	listenersMu sync.RWMutex

	// Message listeners
	messageListeners []chan *Message

	// Logger for Hub operations
	logger zerolog.Logger
}

// Message represents a message sent over WebSocket
type Message struct {
	// Type of message: "text", "attachment", "reaction"
	Type string `json:"type"`

	// Topic this message belongs to
	TopicID int64 `json:"topicId"`

	// User who sent the message
	SenderID int64 `json:"senderId"`

	// Message content
	Content string `json:"content"`

	// Reaction emoji, set for reaction events
	Emoji string `json:"emoji,omitempty"`

	// Target message for reaction events
	MessageID int64 `json:"messageId,omitempty"`

	// True when a reaction was removed rather than added
	Removed bool `json:"removed,omitempty"`

	// Timestamp when the message was sent
	Timestamp time.Time `json:"timestamp"`

	// Message ID from the database
	ID int64 `json:"id,omitempty"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:        make(chan *Message),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		clients:          make(map[int64]map[*Client]bool),
		messageListeners: []chan *Message{},
		logger:           logger,
	}
}

// Run starts the hub, handling client registrations, broadcasts, etc.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topicID := client.topicID
	if _, ok := h.clients[topicID]; !ok {
		h.clients[topicID] = make(map[*Client]bool)
	}
	h.clients[topicID][client] = true

	h.logger.Info().
		Int64("topicID", topicID).
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topicID := client.topicID
	if _, ok := h.clients[topicID]; ok {
		if _, ok := h.clients[topicID][client]; ok {
			delete(h.clients[topicID], client)
			close(client.send)

			// If no more clients on this topic, clean up
			if len(h.clients[topicID]) == 0 {
				delete(h.clients, topicID)
			}

			h.logger.Info().
				Int64("topicID", topicID).
				Int64("userID", client.userID).
				Str("addr", client.remoteAddr).
				Msg("Client unregistered")
		}
	}
}

// broadcastMessage broadcasts a message to all clients on a specific topic
func (h *Hub) broadcastMessage(message *Message) {
	// First, notify message listeners
	h.notifyMessageListeners(message)

	topicID := message.TopicID

	h.mu.RLock()
	clients, ok := h.clients[topicID]
	if !ok {
		h.mu.RUnlock()
		h.logger.Debug().
			Int64("topicID", topicID).
			Msg("No clients on topic for broadcast")
		return
	}
	targets := make([]*Client, 0, len(clients))
	for client := range clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("topicID", topicID).
			Msg("Failed to marshal message for broadcast")
		return
	}

	// Slow clients are dropped inline: this runs on the Run goroutine,
	// which is the only reader of h.unregister, so queueing there would
	// block the hub itself.
	var stalled []*Client
	for _, client := range targets {
		select {
		case client.send <- data:
			// Message sent successfully
		default:
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		h.logger.Warn().
			Int64("topicID", topicID).
			Int64("userID", client.userID).
			Str("addr", client.remoteAddr).
			Msg("Dropping slow client with full send buffer")
		h.unregisterClient(client)
	}

	h.logger.Debug().
		Int64("topicID", topicID).
		Int("clientCount", len(targets)).
		Msg("Message broadcasted to topic")
}

// notifyMessageListeners sends a message to all registered message listeners
func (h *Hub) notifyMessageListeners(message *Message) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.messageListeners {
		// Non-blocking send to avoid blocking on slow listeners
		select {
		case listener <- message:
			// Message sent successfully
		default:
			h.logger.Warn().Msg("Skipped slow message listener")
		}
	}
}

// BroadcastToTopic sends a message to all connected clients on a topic
func (h *Hub) BroadcastToTopic(message *Message) {
	h.broadcast <- message
}

// GetClientsCount returns the number of connected clients for a topic
func (h *Hub) GetClientsCount(topicID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[topicID]; ok {
		return len(clients)
	}
	return 0
}

// AddMessageListener registers a channel to receive all messages
func (h *Hub) AddMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	h.messageListeners = append(h.messageListeners, listener)
	h.logger.Info().Msg("Added new message listener")
}

// RemoveMessageListener removes a listener from the hub
func (h *Hub) RemoveMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.messageListeners {
		if l == listener {
			// Remove listener by replacing it with the last one and truncating
			h.messageListeners[i] = h.messageListeners[len(h.messageListeners)-1]
			h.messageListeners = h.messageListeners[:len(h.messageListeners)-1]
			h.logger.Info().Msg("Removed message listener")
			break
		}
	}
}
