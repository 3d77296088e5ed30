package websocket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ParticipantChecker reports whether a user belongs to a chat topic.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, topicID, userID int64) (bool, error)
}

// Handler upgrades authenticated requests to WebSocket connections.
type Handler struct {
	hub          *Hub
	participants ParticipantChecker
	logger       zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, participants ParticipantChecker, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:          hub,
		participants: participants,
		logger:       logger,
	}
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for real-time chat
// @Description Upgrades HTTP connection to a WebSocket connection for real-time topic messaging
// @Tags chat, websocket
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} gin.H "Invalid topic ID"
// @Failure 401 {object} gin.H "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} gin.H "Forbidden: User is not a participant in the topic"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /chat/topics/{id}/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	topicIDStr := c.Param("id")
	topicID, err := strconv.ParseInt(topicIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid topic ID",
		})
		return
	}

	// Get user ID from context (set by auth middleware)
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	userID, ok := userIDInterface.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid user ID format",
		})
		return
	}

	isParticipant, err := h.participants.IsParticipant(c, topicID, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("topicID", topicID).
			Int64("userID", userID).
			Msg("Failed to check if user is participant")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to check participant status",
		})
		return
	}

	if !isParticipant {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "User is not a participant in this topic",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("topicID", topicID).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		userID:     userID,
		topicID:    topicID,
		remoteAddr: conn.RemoteAddr().String(),
		logger:     h.logger,
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("topicID", topicID).
		Int64("userID", userID).
		Str("remoteAddr", client.remoteAddr).
		Msg("WebSocket connection established")
}
