package models

import "time"

// TopicKind distinguishes direct conversations from named groups.
type TopicKind string

const (
	TopicKindDirect TopicKind = "DIRECT"
	TopicKindGroup  TopicKind = "GROUP"
)

// ChatTopic is a conversation scope: a user-to-user DM or a named group.
// The general room is not a topic; its messages carry a NULL topic id.
type ChatTopic struct {
	ID        int64     `json:"id" db:"id"`
	Kind      TopicKind `json:"kind" db:"kind"`
	Name      string    `json:"name" db:"name"`
	CreatedBy int64     `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ChatAttachment holds the stored-file metadata for a message attachment.
type ChatAttachment struct {
	FileName string `json:"fileName" db:"attachment_name"`
	FileType string `json:"fileType" db:"attachment_type"` // MIME type
	FileSize int64  `json:"fileSize" db:"attachment_size"`
	FilePath string `json:"-" db:"attachment_path"`
}

// ChatMessage is an append-only message. TopicID is nil for the general
// room. Messages are never edited, only appended and reacted to.
type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	TopicID   *int64    `json:"topicId,omitempty" db:"topic_id"`
	SenderID  int64     `json:"senderId" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Optional attachment, nil for plain text messages
	Attachment *ChatAttachment `json:"attachment,omitempty"`

	// Related entities
	Sender    *User          `json:"sender,omitempty"`
	Reactions []ChatReaction `json:"reactions,omitempty"`
}

// ChatReaction is a {user, emoji} pair attached to a message.
type ChatReaction struct {
	MessageID int64     `json:"messageId" db:"message_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Emoji     string    `json:"emoji" db:"emoji"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
