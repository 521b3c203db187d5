package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/repositories/interfaces"
	"medihelp/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types carried over the realtime channel.
const (
	EventUserOnline      = "user:online"
	EventUserOffline     = "user:offline"
	EventUsersOnline     = "users:online"
	EventTypingStart     = "typing:start"
	EventTypingStop      = "typing:stop"
	EventMessageSend     = "message:send"
	EventMessageReceived = "message:received"
	EventMessageSent     = "message:sent"
	EventMessagesRead    = "messages:read"
	EventError           = "error"
)

type Event struct {
	Type           string                 `json:"type"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	UserID         string                 `json:"user_id,omitempty"`
	Timestamp      int64                  `json:"timestamp"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// Hub multiplexes authenticated sessions. Each conversation maps to one room;
// a session joins the rooms of every conversation its user participates in,
// snapshotted at connect time.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	presence   *PresenceTracker
	users      interfaces.UserRepository
	log        *logger.Logger
	mutex      sync.RWMutex
}

func NewHub(users interfaces.UserRepository, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		presence:   NewPresenceTracker(),
		users:      users,
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) Presence() *PresenceTracker {
	return h.presence
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()

	h.clients[client] = true
	for roomID := range client.rooms {
		h.joinRoom(client, roomID)
	}

	// A reconnect replaces the previous connection for that user; tear the
	// old one down without treating it as a presence change.
	replaced := h.presence.Connect(client.userID, client)
	if replaced != nil && replaced != client {
		h.dropClient(replaced)
	}

	h.mutex.Unlock()

	h.log.WithField("user_id", client.userID).Info("websocket client connected")

	h.sendToClient(client, Event{
		Type:      EventUsersOnline,
		Timestamp: time.Now().Unix(),
		Data: map[string]interface{}{
			"user_ids": h.presence.OnlineUserIDs(),
		},
	})

	if replaced == nil {
		h.broadcastExcept(client, Event{
			Type:      EventUserOnline,
			UserID:    client.userID,
			Timestamp: time.Now().Unix(),
		})
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	_, known := h.clients[client]
	if known {
		h.dropClient(client)
	}
	h.mutex.Unlock()

	if !known {
		return
	}

	if h.presence.Disconnect(client.userID, client) {
		h.log.WithField("user_id", client.userID).Info("websocket client disconnected")
		h.persistOffline(client.userID)
		h.broadcastExcept(client, Event{
			Type:      EventUserOffline,
			UserID:    client.userID,
			Timestamp: time.Now().Unix(),
		})
	}
}

// dropClient removes the client from the hub maps and closes its send
// channel. Caller holds the write lock.
func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	close(client.send)
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

// persistOffline records the disconnect on the user record. Runs with its
// own context since the triggering connection is already gone.
func (h *Hub) persistOffline(userID string) {
	if h.users == nil {
		return
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.users.UpdatePresence(ctx, id, models.PresenceStatusOffline, time.Now()); err != nil {
			h.log.WithError(err).WithField("user_id", userID).Warn("failed to persist offline status")
		}
	}()
}

// BroadcastToConversation fans an event out to every session in the
// conversation's room. Used by the REST layer after the authoritative
// persist (message send, mark read).
func (h *Hub) BroadcastToConversation(conversationID string, event Event) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	h.sendToRoomLocked(conversationID, nil, event)
}

func (h *Hub) sendToRoomExcept(roomID string, except *Client, event Event) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	h.sendToRoomLocked(roomID, except, event)
}

// sendToRoomLocked requires at least a read lock.
func (h *Hub) sendToRoomLocked(roomID string, except *Client, event Event) {
	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	data, _ := json.Marshal(event)
	for client := range room {
		if client == except {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Slow consumer; the pump teardown re-enters via unregister.
		}
	}
}

func (h *Hub) broadcastExcept(except *Client, event Event) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	data, _ := json.Marshal(event)
	for client := range h.clients {
		if client == except {
			continue
		}
		select {
		case client.send <- data:
		default:
		}
	}
}

func (h *Hub) sendToClient(client *Client, event Event) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	data, _ := json.Marshal(event)
	select {
	case client.send <- data:
	default:
	}
}
