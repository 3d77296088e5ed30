package dto

import (
	"time"

	"github.com/studyshare/backend/internal/app/models"
)

// --- Request DTOs ---

// CreateTopicRequest creates a DM or group conversation.
type CreateTopicRequest struct {
	Kind string `json:"kind" binding:"required,oneof=DIRECT GROUP"`
	// Name is required for groups, ignored for DMs.
	Name string `json:"name" binding:"required_if=Kind GROUP,max=120"`
	// PeerID is required for DMs, ignored for groups.
	PeerID *int64 `json:"peerId"`
}

// CreateChatMessageRequest posts a text message. Attachments arrive as
// multipart uploads instead.
type CreateChatMessageRequest struct {
	Content string `json:"content" form:"content" binding:"required,max=4000"`
}

// ChatHistoryRequest holds filter parameters for retrieving chat messages.
// Before and After refer to message IDs; polling clients pass the last ID
// they have seen as `after`.
type ChatHistoryRequest struct {
	Before *int64 `form:"before"`
	After  *int64 `form:"after"`
	Limit  int    `form:"limit,default=50" binding:"min=1,max=100"`
}

// ReactionRequest adds or removes a reaction on a message.
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}

// --- Response DTOs ---

// TopicResponse is the API view of a conversation.
type TopicResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatAttachmentResponse describes a message attachment.
type ChatAttachmentResponse struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// ChatReactionResponse is one {user, emoji} pair.
type ChatReactionResponse struct {
	UserID int64  `json:"userId"`
	Emoji  string `json:"emoji"`
}

// ChatMessageResponse is the API view of a message.
type ChatMessageResponse struct {
	ID         int64                   `json:"id"`
	TopicID    *int64                  `json:"topicId,omitempty"`
	SenderID   int64                   `json:"senderId"`
	SenderName string                  `json:"senderName,omitempty"`
	Content    string                  `json:"content"`
	Attachment *ChatAttachmentResponse `json:"attachment,omitempty"`
	Reactions  []ChatReactionResponse  `json:"reactions"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// ChatMessageListResponse is a chronological message batch.
type ChatMessageListResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}

// ToTopicResponse maps a topic model to its API view.
func ToTopicResponse(t *models.ChatTopic) TopicResponse {
	return TopicResponse{
		ID:        t.ID,
		Kind:      string(t.Kind),
		Name:      t.Name,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

// ToChatMessageResponse maps a message model to its API view.
func ToChatMessageResponse(m *models.ChatMessage) ChatMessageResponse {
	resp := ChatMessageResponse{
		ID:        m.ID,
		TopicID:   m.TopicID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Reactions: make([]ChatReactionResponse, 0, len(m.Reactions)),
		CreatedAt: m.CreatedAt,
	}

	if m.Sender != nil {
		resp.SenderName = m.Sender.Username
	}

	if m.Attachment != nil {
		resp.Attachment = &ChatAttachmentResponse{
			FileName: m.Attachment.FileName,
			FileType: m.Attachment.FileType,
			FileSize: m.Attachment.FileSize,
		}
	}

	for _, r := range m.Reactions {
		resp.Reactions = append(resp.Reactions, ChatReactionResponse{
			UserID: r.UserID,
			Emoji:  r.Emoji,
		})
	}

	return resp
}
