package websocket

import (
	"net/http"

	"medihelp/internal/repositories/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenVerifier is the single authentication port shared with the REST
// middleware: it turns a bearer token into a verified identity and role.
type TokenVerifier func(token string) (userID primitive.ObjectID, role string, err error)

type Handler struct {
	hub           *Hub
	conversations interfaces.ConversationRepository
	verify        TokenVerifier
	upgrader      websocket.Upgrader
}

func NewHandler(hub *Hub, conversations interfaces.ConversationRepository, verify TokenVerifier, allowedOrigins []string) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		origins[origin] = true
	}

	return &Handler{
		hub:           hub,
		conversations: conversations,
		verify:        verify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowAll || origins[r.Header.Get("Origin")]
			},
		},
	}
}

// HandleWebSocket authenticates the connection, snapshots the user's
// conversation rooms and hands the session to the hub.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication token required"})
		return
	}

	userID, role, err := h.verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}

	conversations, err := h.conversations.GetConversationsByParticipant(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load conversations"})
		return
	}

	roomIDs := make([]string, 0, len(conversations))
	for _, conversation := range conversations {
		roomIDs = append(roomIDs, conversation.ID.Hex())
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, userID.Hex(), role, roomIDs)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Handler) Hub() *Hub {
	return h.hub
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
