package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/dberrors"
	"github.com/studyshare/backend/internal/pkg/logger"
)

// ChatRepository handles chat topics, participants, messages and reactions.
type ChatRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTopic inserts a topic and registers the initial participants in one
// transaction.
func (r *ChatRepository) CreateTopic(ctx context.Context, topic *models.ChatTopic, participantIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO chat_topics (kind, name, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		topic.Kind, topic.Name, topic.CreatedBy).
		Scan(&topic.ID, &topic.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating topic: %w", err)
	}

	for _, userID := range participantIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_participants (topic_id, user_id) VALUES ($1, $2)
			ON CONFLICT (topic_id, user_id) DO NOTHING`,
			topic.ID, userID)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("error adding participant: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing topic transaction: %w", err)
	}
	return nil
}

// GetTopic retrieves a topic by ID.
func (r *ChatRepository) GetTopic(ctx context.Context, topicID int64) (*models.ChatTopic, error) {
	topic := &models.ChatTopic{}
	err := r.db.QueryRow(ctx, `
		SELECT id, kind, name, created_by, created_at
		FROM chat_topics WHERE id = $1`, topicID).
		Scan(&topic.ID, &topic.Kind, &topic.Name, &topic.CreatedBy, &topic.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTopicNotFound
		}
		return nil, fmt.Errorf("error retrieving topic: %w", err)
	}
	return topic, nil
}

// ListTopicsForUser returns every topic the user participates in, most
// recently created first.
func (r *ChatRepository) ListTopicsForUser(ctx context.Context, userID int64) ([]*models.ChatTopic, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.kind, t.name, t.created_by, t.created_at
		FROM chat_topics t
		JOIN chat_participants p ON p.topic_id = t.id
		WHERE p.user_id = $1
		ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing topics: %w", err)
	}
	defer rows.Close()

	topics := make([]*models.ChatTopic, 0)
	for rows.Next() {
		topic := &models.ChatTopic{}
		if err := rows.Scan(&topic.ID, &topic.Kind, &topic.Name, &topic.CreatedBy, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return topics, nil
}

// IsParticipant reports whether the user belongs to the topic.
func (r *ChatRepository) IsParticipant(ctx context.Context, topicID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM chat_participants WHERE topic_id = $1 AND user_id = $2)`,
		topicID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking participant: %w", err)
	}
	return exists, nil
}

// AddParticipant joins a user to a topic.
func (r *ChatRepository) AddParticipant(ctx context.Context, topicID, userID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		INSERT INTO chat_participants (topic_id, user_id) VALUES ($1, $2)
		ON CONFLICT (topic_id, user_id) DO NOTHING`,
		topicID, userID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrTopicNotFound
		}
		return fmt.Errorf("error adding participant: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyParticipant
	}
	return nil
}

// RemoveParticipant removes a user from a topic.
func (r *ChatRepository) RemoveParticipant(ctx context.Context, topicID, userID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM chat_participants WHERE topic_id = $1 AND user_id = $2`,
		topicID, userID)
	if err != nil {
		return fmt.Errorf("error removing participant: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotParticipant
	}
	return nil
}

const chatMessageColumns = `m.id, m.topic_id, m.sender_id, m.content,
	m.attachment_name, m.attachment_type, m.attachment_size, m.attachment_path,
	m.created_at, u.username`

func scanChatMessage(row pgx.Row) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{Sender: &models.User{}}
	var attName, attType, attPath *string
	var attSize *int64
	err := row.Scan(
		&msg.ID, &msg.TopicID, &msg.SenderID, &msg.Content,
		&attName, &attType, &attSize, &attPath,
		&msg.CreatedAt, &msg.Sender.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error scanning chat message: %w", err)
	}
	msg.Sender.ID = msg.SenderID
	if attName != nil {
		msg.Attachment = &models.ChatAttachment{
			FileName: *attName,
			FileType: *attType,
			FileSize: *attSize,
			FilePath: *attPath,
		}
	}
	return msg, nil
}

// CreateMessage inserts a message and sets its generated fields.
func (r *ChatRepository) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	var attName, attType, attPath *string
	var attSize *int64
	if msg.Attachment != nil {
		attName = &msg.Attachment.FileName
		attType = &msg.Attachment.FileType
		attSize = &msg.Attachment.FileSize
		attPath = &msg.Attachment.FilePath
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO chat_messages (topic_id, sender_id, content,
			attachment_name, attachment_type, attachment_size, attachment_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		msg.TopicID, msg.SenderID, msg.Content, attName, attType, attSize, attPath).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrTopicNotFound
		}
		logger.Error().Err(err).Int64("senderID", msg.SenderID).Msg("Error creating chat message")
		return fmt.Errorf("error creating chat message: %w", err)
	}
	return nil
}

// GetMessage retrieves a single message with sender and reactions.
func (r *ChatRepository) GetMessage(ctx context.Context, messageID int64) (*models.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+chatMessageColumns+`
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1`, messageID)
	msg, err := scanChatMessage(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachReactions(ctx, []*models.ChatMessage{msg}); err != nil {
		return nil, err
	}
	return msg, nil
}

// MessageFilter narrows a chat history query. TopicID nil selects the
// general room (messages with no topic). Before/After page by message ID.
type MessageFilter struct {
	TopicID *int64
	Before  *int64
	After   *int64
	Limit   int
}

// ListMessages returns history in chronological order (created_at ASC, id
// ASC tie-break).
func (r *ChatRepository) ListMessages(ctx context.Context, filter MessageFilter) ([]*models.ChatMessage, error) {
	query := r.sb.Select(chatMessageColumns).
		From("chat_messages m").
		Join("users u ON u.id = m.sender_id").
		Where("m.topic_id IS NOT DISTINCT FROM ?", filter.TopicID).
		OrderBy("m.created_at ASC", "m.id ASC")
	if filter.Before != nil {
		query = query.Where(squirrel.Lt{"m.id": *filter.Before})
	}
	if filter.After != nil {
		query = query.Where(squirrel.Gt{"m.id": *filter.After})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat history query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing chat history query")
		return nil, err
	}
	defer rows.Close()

	messages := make([]*models.ChatMessage, 0)
	for rows.Next() {
		msg, err := scanChatMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}

	if err := r.attachReactions(ctx, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ChatRepository) attachReactions(ctx context.Context, messages []*models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	ids := make([]int64, len(messages))
	byID := make(map[int64]*models.ChatMessage, len(messages))
	for i, msg := range messages {
		ids[i] = msg.ID
		byID[msg.ID] = msg
		msg.Reactions = []models.ChatReaction{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT message_id, user_id, emoji, created_at
		FROM chat_reactions WHERE message_id = ANY($1)
		ORDER BY created_at ASC`, ids)
	if err != nil {
		return fmt.Errorf("error listing reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reaction models.ChatReaction
		if err := rows.Scan(&reaction.MessageID, &reaction.UserID, &reaction.Emoji, &reaction.CreatedAt); err != nil {
			return fmt.Errorf("error scanning reaction: %w", err)
		}
		if msg, ok := byID[reaction.MessageID]; ok {
			msg.Reactions = append(msg.Reactions, reaction)
		}
	}
	return rows.Err()
}

// AddReaction records a {user, emoji} reaction on a message.
func (r *ChatRepository) AddReaction(ctx context.Context, messageID, userID int64, emoji string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_reactions (message_id, user_id, emoji) VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id, emoji) DO NOTHING`,
		messageID, userID, emoji)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrMessageNotFound
		}
		return fmt.Errorf("error adding reaction: %w", err)
	}
	return nil
}

// RemoveReaction deletes a reaction.
func (r *ChatRepository) RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) error {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM chat_reactions WHERE message_id = $1 AND user_id = $2 AND emoji = $3`,
		messageID, userID, emoji)
	if err != nil {
		return fmt.Errorf("error removing reaction: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrReactionNotFound
	}
	return nil
}
