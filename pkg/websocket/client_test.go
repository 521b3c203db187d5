package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medihelp/pkg/logger"
)

func newTestHub() *Hub {
	return NewHub(nil, logger.NewNop())
}

// connect registers a session directly, bypassing the run loop. Callers
// drain the connect-time events before asserting.
func connect(hub *Hub, userID string, rooms ...string) *Client {
	client := NewClient(hub, nil, userID, "patient", rooms)
	hub.registerClient(client)
	return client
}

func drainAll(clients ...*Client) {
	for _, client := range clients {
		for len(client.send) > 0 {
			<-client.send
		}
	}
}

func recvEvent(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case raw := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	default:
		t.Fatal("expected an event, channel empty")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case raw := <-client.send:
		t.Fatalf("unexpected event: %s", raw)
	default:
	}
}

func TestHandleEventTypingRelay(t *testing.T) {
	hub := newTestHub()
	room := "conv1"
	alice := connect(hub, "alice", room)
	bob := connect(hub, "bob", room)
	carol := connect(hub, "carol", "conv2")
	drainAll(alice, bob, carol)

	alice.handleEvent([]byte(`{"type":"typing:start","conversation_id":"conv1"}`))

	event := recvEvent(t, bob)
	assert.Equal(t, EventTypingStart, event.Type)
	assert.Equal(t, "alice", event.UserID)
	assert.Equal(t, room, event.ConversationID)

	assertNoEvent(t, alice)
	assertNoEvent(t, carol)
}

func TestHandleEventMessageSendFanout(t *testing.T) {
	hub := newTestHub()
	alice := connect(hub, "alice", "conv1")
	bob := connect(hub, "bob", "conv1")
	drainAll(alice, bob)

	alice.handleEvent([]byte(`{"type":"message:send","conversation_id":"conv1","data":{"text":"hello"}}`))

	received := recvEvent(t, bob)
	assert.Equal(t, EventMessageReceived, received.Type)
	assert.Equal(t, "alice", received.UserID)
	assert.Equal(t, "hello", received.Data["text"])

	ack := recvEvent(t, alice)
	assert.Equal(t, EventMessageSent, ack.Type)
}

func TestHandleEventMessageSendValidation(t *testing.T) {
	hub := newTestHub()
	alice := connect(hub, "alice", "conv1")
	bob := connect(hub, "bob", "conv1")
	drainAll(alice, bob)

	t.Run("empty payload", func(t *testing.T) {
		alice.handleEvent([]byte(`{"type":"message:send","conversation_id":"conv1"}`))

		event := recvEvent(t, alice)
		assert.Equal(t, EventError, event.Type)
		assertNoEvent(t, bob)
	})

	t.Run("room not joined", func(t *testing.T) {
		alice.handleEvent([]byte(`{"type":"message:send","conversation_id":"conv9","data":{"text":"hi"}}`))

		event := recvEvent(t, alice)
		assert.Equal(t, EventError, event.Type)
		assertNoEvent(t, bob)
	})

	t.Run("attachments only", func(t *testing.T) {
		alice.handleEvent([]byte(`{"type":"message:send","conversation_id":"conv1","data":{"attachments":[{"url":"https://x/scan.pdf"}]}}`))

		received := recvEvent(t, bob)
		assert.Equal(t, EventMessageReceived, received.Type)
	})
}

func TestHandleEventMessagesReadRelay(t *testing.T) {
	hub := newTestHub()
	alice := connect(hub, "alice", "conv1")
	bob := connect(hub, "bob", "conv1")
	drainAll(alice, bob)

	alice.handleEvent([]byte(`{"type":"messages:read","conversation_id":"conv1"}`))

	event := recvEvent(t, bob)
	assert.Equal(t, EventMessagesRead, event.Type)
	assert.Equal(t, "alice", event.UserID)
	assertNoEvent(t, alice)
}

func TestHandleEventMalformed(t *testing.T) {
	hub := newTestHub()
	alice := connect(hub, "alice", "conv1")
	bob := connect(hub, "bob", "conv1")
	drainAll(alice, bob)

	alice.handleEvent([]byte(`{not json`))

	event := recvEvent(t, alice)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, "malformed event payload", event.Data["message"])
	assertNoEvent(t, bob)

	// The session stays up: a following well-formed event still dispatches.
	alice.handleEvent([]byte(`{"type":"typing:stop","conversation_id":"conv1"}`))
	assert.Equal(t, EventTypingStop, recvEvent(t, bob).Type)
}

func TestHandleEventUnknownType(t *testing.T) {
	hub := newTestHub()
	alice := connect(hub, "alice", "conv1")
	drainAll(alice)

	alice.handleEvent([]byte(`{"type":"rooms:nuke","conversation_id":"conv1"}`))

	event := recvEvent(t, alice)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, "unknown event type", event.Data["message"])
}

func TestBroadcastToConversation(t *testing.T) {
	hub := newTestHub()
	alice := connect(hub, "alice", "conv1")
	bob := connect(hub, "bob", "conv1")
	carol := connect(hub, "carol", "conv2")
	drainAll(alice, bob, carol)

	hub.BroadcastToConversation("conv1", Event{Type: EventMessagesRead, ConversationID: "conv1", UserID: "alice"})

	assert.Equal(t, EventMessagesRead, recvEvent(t, alice).Type)
	assert.Equal(t, EventMessagesRead, recvEvent(t, bob).Type)
	assertNoEvent(t, carol)
}
