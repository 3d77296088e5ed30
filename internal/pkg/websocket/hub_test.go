package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID, topicID int64) *Client {
	return &Client{
		hub:        hub,
		send:       make(chan []byte, 8),
		userID:     userID,
		topicID:    topicID,
		remoteAddr: "test",
		logger:     zerolog.Nop(),
	}
}

func waitForCount(t *testing.T, hub *Hub, topicID int64, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientsCount(topicID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("topic %d never reached %d clients", topicID, want)
}

func TestHubBroadcastToTopic(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	inTopic := newTestClient(hub, 1, 10)
	otherTopic := newTestClient(hub, 2, 20)
	hub.register <- inTopic
	hub.register <- otherTopic
	waitForCount(t, hub, 10, 1)
	waitForCount(t, hub, 20, 1)

	hub.BroadcastToTopic(&Message{Type: "text", TopicID: 10, SenderID: 1, Content: "hello"})

	select {
	case data := <-inTopic.send:
		var got Message
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "text", got.Type)
		assert.Equal(t, int64(10), got.TopicID)
		assert.Equal(t, "hello", got.Content)
	case <-time.After(time.Second):
		t.Fatal("same-topic client never received the broadcast")
	}

	select {
	case <-otherTopic.send:
		t.Fatal("client on another topic received the broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	client := newTestClient(hub, 1, 10)
	hub.register <- client
	waitForCount(t, hub, 10, 1)

	hub.unregister <- client
	waitForCount(t, hub, 10, 0)

	select {
	case _, open := <-client.send:
		assert.False(t, open, "send channel should be closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	slow := newTestClient(hub, 1, 10)
	slow.send = make(chan []byte, 1)
	healthy := newTestClient(hub, 2, 20)
	hub.register <- slow
	hub.register <- healthy
	waitForCount(t, hub, 10, 1)
	waitForCount(t, hub, 20, 1)

	// Fill the slow client's buffer, then overflow it.
	hub.BroadcastToTopic(&Message{Type: "text", TopicID: 10, SenderID: 3, Content: "one"})
	hub.BroadcastToTopic(&Message{Type: "text", TopicID: 10, SenderID: 3, Content: "two"})
	waitForCount(t, hub, 10, 0)

	// The hub must still serve other topics after shedding the slow client.
	done := make(chan struct{})
	go func() {
		hub.BroadcastToTopic(&Message{Type: "text", TopicID: 20, SenderID: 3, Content: "still alive"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub stopped accepting broadcasts after a slow client")
	}

	select {
	case data := <-healthy.send:
		var got Message
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "still alive", got.Content)
	case <-time.After(time.Second):
		t.Fatal("healthy client never received the broadcast")
	}

	// The slow client's channel is closed once its buffered message drains.
	<-slow.send
	select {
	case _, open := <-slow.send:
		assert.False(t, open, "slow client's send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("slow client's send channel was not closed")
	}
}

func TestHubMessageListeners(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	listener := make(chan *Message, 1)
	hub.AddMessageListener(listener)

	hub.BroadcastToTopic(&Message{Type: "text", TopicID: 5, SenderID: 3, Content: "persist me"})

	select {
	case msg := <-listener:
		assert.Equal(t, int64(5), msg.TopicID)
		assert.Equal(t, int64(3), msg.SenderID)
	case <-time.After(time.Second):
		t.Fatal("listener never notified")
	}

	hub.RemoveMessageListener(listener)
	hub.BroadcastToTopic(&Message{Type: "text", TopicID: 5, SenderID: 3, Content: "after removal"})

	select {
	case msg := <-listener:
		t.Fatalf("removed listener still notified: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
