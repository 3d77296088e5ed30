package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyshare/backend/internal/app/models"
)

// MessageStore persists chat messages arriving over WebSocket.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
}

// MessageHandler processes WebSocket messages and persists them to the database
type MessageHandler struct {
	store  MessageStore
	hub    *Hub
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(store MessageStore, hub *Hub, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// Start begins processing messages from the hub
func (h *MessageHandler) Start() {
	go h.processMessages()
}

// processMessages listens for messages and saves them to the database
func (h *MessageHandler) processMessages() {
	messageChan := make(chan *Message, 64)
	h.hub.AddMessageListener(messageChan)

	for message := range messageChan {
		// Messages that already carry a database ID were persisted by the
		// REST service before broadcast. Only raw client messages need saving.
		if message.Type == "text" && message.ID == 0 {
			h.processTextMessage(message)
		}
	}
}

// processTextMessage saves a text message to the database
func (h *MessageHandler) processTextMessage(message *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	topicID := message.TopicID
	chatMessage := &models.ChatMessage{
		TopicID:  &topicID,
		SenderID: message.SenderID,
		Content:  message.Content,
	}

	if err := h.store.CreateMessage(ctx, chatMessage); err != nil {
		h.logger.Error().
			Err(err).
			Int64("topicID", topicID).
			Int64("senderID", message.SenderID).
			Msg("Failed to save WebSocket message to database")
		return
	}

	message.ID = chatMessage.ID

	h.logger.Debug().
		Int64("messageID", chatMessage.ID).
		Int64("topicID", topicID).
		Msg("WebSocket message saved to database")
}
