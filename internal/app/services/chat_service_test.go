package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/app/repositories"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/websocket"
)

type stubChatRepo struct {
	topics       map[int64]*models.ChatTopic
	participants map[int64]map[int64]bool // topicID -> userID
	messages     map[int64]*models.ChatMessage
	reactions    map[int64]map[string]bool // messageID -> "userID:emoji"
	nextTopicID  int64
	nextMsgID    int64
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{
		topics:       make(map[int64]*models.ChatTopic),
		participants: make(map[int64]map[int64]bool),
		messages:     make(map[int64]*models.ChatMessage),
		reactions:    make(map[int64]map[string]bool),
		nextTopicID:  1,
		nextMsgID:    1,
	}
}

func (r *stubChatRepo) CreateTopic(ctx context.Context, topic *models.ChatTopic, participantIDs []int64) error {
	topic.ID = r.nextTopicID
	r.nextTopicID++
	r.topics[topic.ID] = topic
	r.participants[topic.ID] = make(map[int64]bool)
	for _, id := range participantIDs {
		r.participants[topic.ID][id] = true
	}
	return nil
}

func (r *stubChatRepo) GetTopic(ctx context.Context, topicID int64) (*models.ChatTopic, error) {
	topic, ok := r.topics[topicID]
	if !ok {
		return nil, apperrors.ErrTopicNotFound
	}
	return topic, nil
}

func (r *stubChatRepo) ListTopicsForUser(ctx context.Context, userID int64) ([]*models.ChatTopic, error) {
	var out []*models.ChatTopic
	for id, members := range r.participants {
		if members[userID] {
			out = append(out, r.topics[id])
		}
	}
	return out, nil
}

func (r *stubChatRepo) IsParticipant(ctx context.Context, topicID, userID int64) (bool, error) {
	return r.participants[topicID][userID], nil
}

func (r *stubChatRepo) AddParticipant(ctx context.Context, topicID, userID int64) error {
	if r.participants[topicID][userID] {
		return apperrors.ErrAlreadyParticipant
	}
	r.participants[topicID][userID] = true
	return nil
}

func (r *stubChatRepo) RemoveParticipant(ctx context.Context, topicID, userID int64) error {
	if !r.participants[topicID][userID] {
		return apperrors.ErrNotParticipant
	}
	delete(r.participants[topicID], userID)
	return nil
}

func (r *stubChatRepo) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = r.nextMsgID
	r.nextMsgID++
	r.messages[msg.ID] = msg
	return nil
}

func (r *stubChatRepo) GetMessage(ctx context.Context, messageID int64) (*models.ChatMessage, error) {
	msg, ok := r.messages[messageID]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	return msg, nil
}

func (r *stubChatRepo) ListMessages(ctx context.Context, filter repositories.MessageFilter) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for id := int64(1); id < r.nextMsgID; id++ {
		msg, ok := r.messages[id]
		if !ok {
			continue
		}
		if filter.TopicID == nil {
			if msg.TopicID != nil {
				continue
			}
		} else if msg.TopicID == nil || *msg.TopicID != *filter.TopicID {
			continue
		}
		if filter.After != nil && msg.ID <= *filter.After {
			continue
		}
		if filter.Before != nil && msg.ID >= *filter.Before {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *stubChatRepo) AddReaction(ctx context.Context, messageID, userID int64, emoji string) error {
	if r.reactions[messageID] == nil {
		r.reactions[messageID] = make(map[string]bool)
	}
	r.reactions[messageID][reactionKey(userID, emoji)] = true
	return nil
}

func (r *stubChatRepo) RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) error {
	if !r.reactions[messageID][reactionKey(userID, emoji)] {
		return apperrors.ErrReactionNotFound
	}
	delete(r.reactions[messageID], reactionKey(userID, emoji))
	return nil
}

func reactionKey(userID int64, emoji string) string {
	return strconv.FormatInt(userID, 10) + ":" + emoji
}

type stubBroadcaster struct {
	messages []*websocket.Message
}

func (b *stubBroadcaster) BroadcastToTopic(message *websocket.Message) {
	b.messages = append(b.messages, message)
}

func newChatServiceForTest(repo *stubChatRepo, users *stubUserRepo, hub *stubBroadcaster) ChatService {
	return NewChatService(repo, users, newStubStorage(), hub, zerolog.Nop())
}

func TestCreateTopic(t *testing.T) {
	users := newStubUserRepo()
	peer := &models.User{Username: "peer", Email: "peer@college.edu"}
	require.NoError(t, users.Create(context.Background(), peer))
	creatorID := int64(100)

	t.Run("direct topic holds both users", func(t *testing.T) {
		repo := newStubChatRepo()
		svc := newChatServiceForTest(repo, users, &stubBroadcaster{})

		topic, err := svc.CreateTopic(context.Background(), creatorID, &dto.CreateTopicRequest{Kind: "DIRECT", PeerID: &peer.ID})
		require.NoError(t, err)
		assert.True(t, repo.participants[topic.ID][creatorID])
		assert.True(t, repo.participants[topic.ID][peer.ID])
	})

	t.Run("direct topic requires peer", func(t *testing.T) {
		svc := newChatServiceForTest(newStubChatRepo(), users, &stubBroadcaster{})
		_, err := svc.CreateTopic(context.Background(), creatorID, &dto.CreateTopicRequest{Kind: "DIRECT"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("direct topic with self rejected", func(t *testing.T) {
		svc := newChatServiceForTest(newStubChatRepo(), users, &stubBroadcaster{})
		_, err := svc.CreateTopic(context.Background(), creatorID, &dto.CreateTopicRequest{Kind: "DIRECT", PeerID: &creatorID})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("direct topic with unknown peer rejected", func(t *testing.T) {
		svc := newChatServiceForTest(newStubChatRepo(), users, &stubBroadcaster{})
		missing := int64(999)
		_, err := svc.CreateTopic(context.Background(), creatorID, &dto.CreateTopicRequest{Kind: "DIRECT", PeerID: &missing})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("group topic starts with creator only", func(t *testing.T) {
		repo := newStubChatRepo()
		svc := newChatServiceForTest(repo, users, &stubBroadcaster{})

		topic, err := svc.CreateTopic(context.Background(), creatorID, &dto.CreateTopicRequest{Kind: "GROUP", Name: "algorithms"})
		require.NoError(t, err)
		assert.Equal(t, "algorithms", topic.Name)
		assert.Len(t, repo.participants[topic.ID], 1)
	})

	t.Run("group topic requires name", func(t *testing.T) {
		svc := newChatServiceForTest(newStubChatRepo(), users, &stubBroadcaster{})
		_, err := svc.CreateTopic(context.Background(), creatorID, &dto.CreateTopicRequest{Kind: "GROUP", Name: "  "})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestJoinTopic(t *testing.T) {
	users := newStubUserRepo()
	peer := &models.User{Username: "peer"}
	require.NoError(t, users.Create(context.Background(), peer))

	repo := newStubChatRepo()
	svc := newChatServiceForTest(repo, users, &stubBroadcaster{})

	direct, err := svc.CreateTopic(context.Background(), 100, &dto.CreateTopicRequest{Kind: "DIRECT", PeerID: &peer.ID})
	require.NoError(t, err)
	group, err := svc.CreateTopic(context.Background(), 100, &dto.CreateTopicRequest{Kind: "GROUP", Name: "study group"})
	require.NoError(t, err)

	t.Run("direct topics are closed", func(t *testing.T) {
		err := svc.JoinTopic(context.Background(), direct.ID, 200)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("group topics are open", func(t *testing.T) {
		require.NoError(t, svc.JoinTopic(context.Background(), group.ID, 200))
		assert.True(t, repo.participants[group.ID][200])
	})

	t.Run("joining twice conflicts", func(t *testing.T) {
		err := svc.JoinTopic(context.Background(), group.ID, 200)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyParticipant)
	})

	t.Run("leave", func(t *testing.T) {
		require.NoError(t, svc.LeaveTopic(context.Background(), group.ID, 200))
		err := svc.LeaveTopic(context.Background(), group.ID, 200)
		assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	})
}

func TestSendTextMessage(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubChatRepo()
	hub := &stubBroadcaster{}
	svc := newChatServiceForTest(repo, users, hub)

	group, err := svc.CreateTopic(context.Background(), 100, &dto.CreateTopicRequest{Kind: "GROUP", Name: "g"})
	require.NoError(t, err)

	t.Run("participant can send, message is broadcast", func(t *testing.T) {
		msg, err := svc.SendTextMessage(context.Background(), group.ID, 100, &dto.CreateChatMessageRequest{Content: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.Content)

		require.Len(t, hub.messages, 1)
		assert.Equal(t, "text", hub.messages[0].Type)
		assert.Equal(t, msg.ID, hub.messages[0].ID, "broadcast carries the persisted ID")
	})

	t.Run("non-participant rejected", func(t *testing.T) {
		_, err := svc.SendTextMessage(context.Background(), group.ID, 200, &dto.CreateChatMessageRequest{Content: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	})

	t.Run("blank content rejected", func(t *testing.T) {
		_, err := svc.SendTextMessage(context.Background(), group.ID, 100, &dto.CreateChatMessageRequest{Content: "   "})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestGeneralRoom(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubChatRepo()
	hub := &stubBroadcaster{}
	svc := newChatServiceForTest(repo, users, hub)

	first, err := svc.SendGeneralMessage(context.Background(), 1, &dto.CreateChatMessageRequest{Content: "first"})
	require.NoError(t, err)
	_, err = svc.SendGeneralMessage(context.Background(), 2, &dto.CreateChatMessageRequest{Content: "second"})
	require.NoError(t, err)

	assert.Empty(t, hub.messages, "general room is polled, not broadcast")
	assert.Nil(t, first.TopicID, "general messages carry no topic")

	t.Run("full history", func(t *testing.T) {
		msgs, err := svc.GetGeneralMessages(context.Background(), &dto.ChatHistoryRequest{Limit: 50})
		require.NoError(t, err)
		assert.Len(t, msgs, 2)
	})

	t.Run("poll with after", func(t *testing.T) {
		msgs, err := svc.GetGeneralMessages(context.Background(), &dto.ChatHistoryRequest{After: &first.ID, Limit: 50})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "second", msgs[0].Content)
	})
}

func TestReactions(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubChatRepo()
	hub := &stubBroadcaster{}
	svc := newChatServiceForTest(repo, users, hub)

	group, err := svc.CreateTopic(context.Background(), 100, &dto.CreateTopicRequest{Kind: "GROUP", Name: "g"})
	require.NoError(t, err)
	msg, err := svc.SendTextMessage(context.Background(), group.ID, 100, &dto.CreateChatMessageRequest{Content: "react to me"})
	require.NoError(t, err)

	t.Run("participant adds and removes", func(t *testing.T) {
		_, err := svc.AddReaction(context.Background(), msg.ID, 100, "👍")
		require.NoError(t, err)

		last := hub.messages[len(hub.messages)-1]
		assert.Equal(t, "reaction", last.Type)
		assert.Equal(t, "👍", last.Emoji)
		assert.False(t, last.Removed)

		_, err = svc.RemoveReaction(context.Background(), msg.ID, 100, "👍")
		require.NoError(t, err)
		last = hub.messages[len(hub.messages)-1]
		assert.True(t, last.Removed)
	})

	t.Run("removing absent reaction fails", func(t *testing.T) {
		_, err := svc.RemoveReaction(context.Background(), msg.ID, 100, "🎉")
		assert.ErrorIs(t, err, apperrors.ErrReactionNotFound)
	})

	t.Run("non-participant cannot react to topic message", func(t *testing.T) {
		_, err := svc.AddReaction(context.Background(), msg.ID, 200, "👍")
		assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	})

	t.Run("anyone reacts in the general room", func(t *testing.T) {
		general, err := svc.SendGeneralMessage(context.Background(), 1, &dto.CreateChatMessageRequest{Content: "open"})
		require.NoError(t, err)
		_, err = svc.AddReaction(context.Background(), general.ID, 200, "👍")
		assert.NoError(t, err)
	})
}
