package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	role   string
	rooms  map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, role string, roomIDs []string) *Client {
	rooms := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		rooms[id] = true
	}

	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		role:   role,
		rooms:  rooms,
	}
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("user_id", c.userID).Warn("websocket read error")
			}
			break
		}

		c.handleEvent(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent validates and dispatches one inbound event. Malformed events
// produce an error event on this session only; the connection stays up.
func (c *Client) handleEvent(raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		c.sendError("", "malformed event payload")
		return
	}

	event.UserID = c.userID
	event.Timestamp = time.Now().Unix()

	switch event.Type {
	case EventTypingStart, EventTypingStop:
		if !c.inConversation(event.ConversationID) {
			c.sendError(event.Type, "conversation_id missing or not joined")
			return
		}
		c.hub.sendToRoomExcept(event.ConversationID, c, event)

	case EventMessageSend:
		if !c.inConversation(event.ConversationID) {
			c.sendError(event.Type, "conversation_id missing or not joined")
			return
		}
		if !hasMessageContent(event.Data) {
			c.sendError(event.Type, "message requires text or attachments")
			return
		}

		// Persistence is the REST path's job; the hub only fans the
		// already-persisted payload out to the other participant.
		received := event
		received.Type = EventMessageReceived
		c.hub.sendToRoomExcept(event.ConversationID, c, received)

		ack := event
		ack.Type = EventMessageSent
		c.hub.sendToClient(c, ack)

	case EventMessagesRead:
		if !c.inConversation(event.ConversationID) {
			c.sendError(event.Type, "conversation_id missing or not joined")
			return
		}
		c.hub.sendToRoomExcept(event.ConversationID, c, event)

	default:
		c.sendError(event.Type, "unknown event type")
	}
}

func (c *Client) inConversation(conversationID string) bool {
	return conversationID != "" && c.rooms[conversationID]
}

func (c *Client) sendError(eventType, message string) {
	c.hub.sendToClient(c, Event{
		Type:      EventError,
		Timestamp: time.Now().Unix(),
		Data: map[string]interface{}{
			"event":   eventType,
			"message": message,
		},
	})
}

func hasMessageContent(data map[string]interface{}) bool {
	if data == nil {
		return false
	}
	if text, ok := data["text"].(string); ok && text != "" {
		return true
	}
	if attachments, ok := data["attachments"].([]interface{}); ok && len(attachments) > 0 {
		return true
	}
	return false
}
