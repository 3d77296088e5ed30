package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/app/services"
	"github.com/studyshare/backend/internal/middleware"
)

// ChatController handles chat topics, messages and reactions
type ChatController struct {
	chatService services.ChatService
	logger      zerolog.Logger
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService, logger zerolog.Logger) *ChatController {
	return &ChatController{
		chatService: chatService,
		logger:      logger,
	}
}

func chatMessageListResponse(messages []*models.ChatMessage) dto.ChatMessageListResponse {
	responses := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, dto.ToChatMessageResponse(m))
	}
	return dto.ChatMessageListResponse{Messages: responses}
}

// CreateTopic creates a DM or group conversation
// @Summary Create a chat topic
// @Description Creates a direct (two participants) or group conversation
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTopicRequest true "Topic kind plus name or peer"
// @Success 201 {object} dto.APIResponse{data=dto.TopicResponse} "Topic created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Peer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/topics [post]
func (c *ChatController) CreateTopic(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	topic, err := c.chatService.CreateTopic(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ToTopicResponse(topic),
	})
}

// ListTopics lists the caller's conversations
// @Summary List chat topics
// @Description Lists every topic the caller participates in
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.TopicResponse} "Topics"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/topics [get]
func (c *ChatController) ListTopics(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	topics, err := c.chatService.ListTopics(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.TopicResponse, 0, len(topics))
	for _, t := range topics {
		responses = append(responses, dto.ToTopicResponse(t))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: responses,
	})
}

// JoinTopic joins a group topic
// @Summary Join a topic
// @Description Adds the caller to a group topic. Direct topics cannot be joined.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 200 {object} dto.APIResponse{data=map[string]string} "Joined"
// @Failure 403 {object} dto.ErrorResponse "Topic is not joinable"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Failure 409 {object} dto.ErrorResponse "Already a participant"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/topics/{id}/join [post]
func (c *ChatController) JoinTopic(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid topic ID")))
		return
	}

	if err := c.chatService.JoinTopic(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: map[string]string{"message": "Joined topic"},
	})
}

// LeaveTopic leaves a topic
// @Summary Leave a topic
// @Description Removes the caller from a topic's participants
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 200 {object} dto.APIResponse{data=map[string]string} "Left"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/topics/{id}/leave [post]
func (c *ChatController) LeaveTopic(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid topic ID")))
		return
	}

	if err := c.chatService.LeaveTopic(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: map[string]string{"message": "Left topic"},
	})
}

// GetTopicMessages returns topic history
// @Summary Topic history
// @Description Returns messages in chronological order with before/after/limit paging
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Param before query int false "Only messages with ID below this"
// @Param after query int false "Only messages with ID above this"
// @Param limit query int false "Batch size"
// @Success 200 {object} dto.APIResponse{data=dto.ChatMessageListResponse} "Messages"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/topics/{id}/messages [get]
func (c *ChatController) GetTopicMessages(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid topic ID")))
		return
	}

	var req dto.ChatHistoryRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	messages, err := c.chatService.GetTopicMessages(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: chatMessageListResponse(messages),
	})
}

// SendMessage posts a message to a topic
// @Summary Send a topic message
// @Description Sends a text message, or an attachment when the request is multipart
// @Tags chat
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 201 {object} dto.APIResponse{data=dto.ChatMessageResponse} "Message sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/topics/{id}/messages [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid topic ID")))
		return
	}

	// Multipart requests carry an attachment, JSON requests plain text.
	if file, err := ctx.FormFile("file"); err == nil && file != nil {
		content := ctx.PostForm("content")
		message, err := c.chatService.SendFileMessage(ctx.Request.Context(), id, userID, content, file)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, dto.APIResponse{
			Data: dto.ToChatMessageResponse(message),
		})
		return
	}

	var req dto.CreateChatMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	message, err := c.chatService.SendTextMessage(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ToChatMessageResponse(message),
	})
}

// GetGeneralMessages serves the shared room
// @Summary General room history
// @Description Returns general room messages chronologically. Poll with `after` set to the last seen message ID.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param before query int false "Only messages with ID below this"
// @Param after query int false "Only messages with ID above this"
// @Param limit query int false "Batch size"
// @Success 200 {object} dto.APIResponse{data=dto.ChatMessageListResponse} "Messages"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/general/messages [get]
func (c *ChatController) GetGeneralMessages(ctx *gin.Context) {
	var req dto.ChatHistoryRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	messages, err := c.chatService.GetGeneralMessages(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: chatMessageListResponse(messages),
	})
}

// SendGeneralMessage posts to the shared room
// @Summary Send a general room message
// @Description Appends a text message to the general room
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateChatMessageRequest true "Message content"
// @Success 201 {object} dto.APIResponse{data=dto.ChatMessageResponse} "Message sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/general/messages [post]
func (c *ChatController) SendGeneralMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateChatMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	message, err := c.chatService.SendGeneralMessage(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ToChatMessageResponse(message),
	})
}

// AddReaction reacts to a message
// @Summary Add a reaction
// @Description Adds a {user, emoji} reaction and broadcasts the change on the topic channel
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param request body dto.ReactionRequest true "Emoji"
// @Success 200 {object} dto.APIResponse{data=dto.ChatMessageResponse} "Updated message"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/messages/{id}/reactions [post]
func (c *ChatController) AddReaction(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid message ID")))
		return
	}

	var req dto.ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	message, err := c.chatService.AddReaction(ctx.Request.Context(), id, userID, req.Emoji)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.ToChatMessageResponse(message),
	})
}

// RemoveReaction removes a reaction
// @Summary Remove a reaction
// @Description Removes the caller's {emoji} reaction and broadcasts the change
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param request body dto.ReactionRequest true "Emoji"
// @Success 200 {object} dto.APIResponse{data=dto.ChatMessageResponse} "Updated message"
// @Failure 404 {object} dto.ErrorResponse "Message or reaction not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/messages/{id}/reactions [delete]
func (c *ChatController) RemoveReaction(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid message ID")))
		return
	}

	var req dto.ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	message, err := c.chatService.RemoveReaction(ctx.Request.Context(), id, userID, req.Emoji)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.ToChatMessageResponse(message),
	})
}
