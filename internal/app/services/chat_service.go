package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/app/repositories"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/filestorage"
	"github.com/studyshare/backend/internal/pkg/upload"
	"github.com/studyshare/backend/internal/pkg/websocket"
)

// ChatService defines the interface for chat operations
type ChatService interface {
	CreateTopic(ctx context.Context, creatorID int64, req *dto.CreateTopicRequest) (*models.ChatTopic, error)
	ListTopics(ctx context.Context, userID int64) ([]*models.ChatTopic, error)
	JoinTopic(ctx context.Context, topicID, userID int64) error
	LeaveTopic(ctx context.Context, topicID, userID int64) error
	GetTopicMessages(ctx context.Context, topicID, userID int64, req *dto.ChatHistoryRequest) ([]*models.ChatMessage, error)
	SendTextMessage(ctx context.Context, topicID, senderID int64, req *dto.CreateChatMessageRequest) (*models.ChatMessage, error)
	SendFileMessage(ctx context.Context, topicID, senderID int64, content string, file *multipart.FileHeader) (*models.ChatMessage, error)
	GetGeneralMessages(ctx context.Context, req *dto.ChatHistoryRequest) ([]*models.ChatMessage, error)
	SendGeneralMessage(ctx context.Context, senderID int64, req *dto.CreateChatMessageRequest) (*models.ChatMessage, error)
	AddReaction(ctx context.Context, messageID, userID int64, emoji string) (*models.ChatMessage, error)
	RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) (*models.ChatMessage, error)
}

// chatRepository is the slice of ChatRepository the service needs.
type chatRepository interface {
	CreateTopic(ctx context.Context, topic *models.ChatTopic, participantIDs []int64) error
	GetTopic(ctx context.Context, topicID int64) (*models.ChatTopic, error)
	ListTopicsForUser(ctx context.Context, userID int64) ([]*models.ChatTopic, error)
	IsParticipant(ctx context.Context, topicID, userID int64) (bool, error)
	AddParticipant(ctx context.Context, topicID, userID int64) error
	RemoveParticipant(ctx context.Context, topicID, userID int64) error
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	GetMessage(ctx context.Context, messageID int64) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, filter repositories.MessageFilter) ([]*models.ChatMessage, error)
	AddReaction(ctx context.Context, messageID, userID int64, emoji string) error
	RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) error
}

type chatUserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// broadcaster fans a message out to connected topic clients.
type broadcaster interface {
	BroadcastToTopic(message *websocket.Message)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	chatRepo  chatRepository
	userRepo  chatUserRepository
	storage   filestorage.FileStorage
	validator *upload.Validator
	hub       broadcaster
	logger    zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	chatRepo chatRepository,
	userRepo chatUserRepository,
	storage filestorage.FileStorage,
	hub broadcaster,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		storage:   storage,
		validator: upload.NewValidator(upload.MaxChatAttachment),
		hub:       hub,
		logger:    logger,
	}
}

// CreateTopic creates a DM or group topic. A DM holds exactly the creator
// and the peer; a group starts with the creator.
func (s *chatServiceImpl) CreateTopic(ctx context.Context, creatorID int64, req *dto.CreateTopicRequest) (*models.ChatTopic, error) {
	kind := models.TopicKind(req.Kind)
	topic := &models.ChatTopic{
		Kind:      kind,
		CreatedBy: creatorID,
	}

	var participants []int64
	switch kind {
	case models.TopicKindDirect:
		if req.PeerID == nil {
			return nil, fmt.Errorf("%w: peerId is required for a direct topic", apperrors.ErrValidationFailed)
		}
		if *req.PeerID == creatorID {
			return nil, fmt.Errorf("%w: cannot open a direct topic with yourself", apperrors.ErrValidationFailed)
		}
		if _, err := s.userRepo.GetByID(ctx, *req.PeerID); err != nil {
			return nil, err
		}
		participants = []int64{creatorID, *req.PeerID}
	case models.TopicKindGroup:
		if strings.TrimSpace(req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required for a group topic", apperrors.ErrValidationFailed)
		}
		topic.Name = req.Name
		participants = []int64{creatorID}
	default:
		return nil, fmt.Errorf("%w: kind must be DIRECT or GROUP", apperrors.ErrValidationFailed)
	}

	if err := s.chatRepo.CreateTopic(ctx, topic, participants); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("topicID", topic.ID).Str("kind", string(kind)).Int64("creatorID", creatorID).Msg("Chat topic created")
	return topic, nil
}

func (s *chatServiceImpl) ListTopics(ctx context.Context, userID int64) ([]*models.ChatTopic, error) {
	return s.chatRepo.ListTopicsForUser(ctx, userID)
}

// JoinTopic adds the user to a group topic. Direct topics are closed.
func (s *chatServiceImpl) JoinTopic(ctx context.Context, topicID, userID int64) error {
	topic, err := s.chatRepo.GetTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if topic.Kind != models.TopicKindGroup {
		return apperrors.ErrPermissionDenied
	}
	return s.chatRepo.AddParticipant(ctx, topicID, userID)
}

func (s *chatServiceImpl) LeaveTopic(ctx context.Context, topicID, userID int64) error {
	if _, err := s.chatRepo.GetTopic(ctx, topicID); err != nil {
		return err
	}
	return s.chatRepo.RemoveParticipant(ctx, topicID, userID)
}

// GetTopicMessages returns topic history in chronological order. Only
// participants may read it.
func (s *chatServiceImpl) GetTopicMessages(ctx context.Context, topicID, userID int64, req *dto.ChatHistoryRequest) ([]*models.ChatMessage, error) {
	if err := s.requireParticipant(ctx, topicID, userID); err != nil {
		return nil, err
	}

	return s.chatRepo.ListMessages(ctx, repositories.MessageFilter{
		TopicID: &topicID,
		Before:  req.Before,
		After:   req.After,
		Limit:   req.Limit,
	})
}

// SendTextMessage persists a message and broadcasts it to connected clients.
func (s *chatServiceImpl) SendTextMessage(ctx context.Context, topicID, senderID int64, req *dto.CreateChatMessageRequest) (*models.ChatMessage, error) {
	if err := s.requireParticipant(ctx, topicID, senderID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", apperrors.ErrValidationFailed)
	}

	msg := &models.ChatMessage{
		TopicID:  &topicID,
		SenderID: senderID,
		Content:  req.Content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.hub.BroadcastToTopic(&websocket.Message{
		Type:      "text",
		TopicID:   topicID,
		SenderID:  senderID,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
		ID:        msg.ID,
	})

	return s.chatRepo.GetMessage(ctx, msg.ID)
}

// SendFileMessage stores an attachment, persists the message and broadcasts.
func (s *chatServiceImpl) SendFileMessage(ctx context.Context, topicID, senderID int64, content string, file *multipart.FileHeader) (*models.ChatMessage, error) {
	if err := s.requireParticipant(ctx, topicID, senderID); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.ErrFileMissing
	}

	mimeType, err := s.validator.Check(file)
	if err != nil {
		return nil, err
	}

	subPath := path.Join("chat-attachments", strconv.FormatInt(topicID, 10))
	storedPath, err := s.storage.SaveFile(file, subPath)
	if err != nil {
		s.logger.Error().Err(err).Int64("topicID", topicID).Msg("Failed to store chat attachment")
		return nil, fmt.Errorf("error storing file: %w", err)
	}

	msg := &models.ChatMessage{
		TopicID:  &topicID,
		SenderID: senderID,
		Content:  content,
		Attachment: &models.ChatAttachment{
			FileName: file.Filename,
			FileType: mimeType,
			FileSize: file.Size,
			FilePath: storedPath,
		},
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		if cleanupErr := s.storage.DeleteFile(storedPath); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("path", storedPath).Msg("Failed to remove orphaned attachment")
		}
		return nil, err
	}

	s.hub.BroadcastToTopic(&websocket.Message{
		Type:      "attachment",
		TopicID:   topicID,
		SenderID:  senderID,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
		ID:        msg.ID,
	})

	return s.chatRepo.GetMessage(ctx, msg.ID)
}

// GetGeneralMessages serves the shared room over plain request/response.
// Clients poll with `after` set to the last message ID they have seen.
func (s *chatServiceImpl) GetGeneralMessages(ctx context.Context, req *dto.ChatHistoryRequest) ([]*models.ChatMessage, error) {
	return s.chatRepo.ListMessages(ctx, repositories.MessageFilter{
		Before: req.Before,
		After:  req.After,
		Limit:  req.Limit,
	})
}

// SendGeneralMessage appends to the shared room. No broadcast: the room is
// served by polling.
func (s *chatServiceImpl) SendGeneralMessage(ctx context.Context, senderID int64, req *dto.CreateChatMessageRequest) (*models.ChatMessage, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", apperrors.ErrValidationFailed)
	}

	msg := &models.ChatMessage{
		SenderID: senderID,
		Content:  req.Content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessage(ctx, msg.ID)
}

// AddReaction records a reaction and broadcasts the updated message state.
func (s *chatServiceImpl) AddReaction(ctx context.Context, messageID, userID int64, emoji string) (*models.ChatMessage, error) {
	msg, err := s.reactionTarget(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.AddReaction(ctx, messageID, userID, emoji); err != nil {
		return nil, err
	}
	s.broadcastReaction(msg, userID, emoji, false)

	return s.chatRepo.GetMessage(ctx, messageID)
}

// RemoveReaction deletes a reaction and broadcasts the updated state.
func (s *chatServiceImpl) RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) (*models.ChatMessage, error) {
	msg, err := s.reactionTarget(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.RemoveReaction(ctx, messageID, userID, emoji); err != nil {
		return nil, err
	}
	s.broadcastReaction(msg, userID, emoji, true)

	return s.chatRepo.GetMessage(ctx, messageID)
}

// reactionTarget loads the message and checks the user may react to it.
// General-room messages are open to every authenticated user.
func (s *chatServiceImpl) reactionTarget(ctx context.Context, messageID, userID int64) (*models.ChatMessage, error) {
	msg, err := s.chatRepo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.TopicID != nil {
		if err := s.requireParticipant(ctx, *msg.TopicID, userID); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func (s *chatServiceImpl) broadcastReaction(msg *models.ChatMessage, userID int64, emoji string, removed bool) {
	if msg.TopicID == nil {
		return
	}
	s.hub.BroadcastToTopic(&websocket.Message{
		Type:      "reaction",
		TopicID:   *msg.TopicID,
		SenderID:  userID,
		Emoji:     emoji,
		MessageID: msg.ID,
		Removed:   removed,
	})
}

func (s *chatServiceImpl) requireParticipant(ctx context.Context, topicID, userID int64) error {
	isParticipant, err := s.chatRepo.IsParticipant(ctx, topicID, userID)
	if err != nil {
		return fmt.Errorf("error checking participant status: %w", err)
	}
	if !isParticipant {
		return apperrors.ErrNotParticipant
	}
	return nil
}
