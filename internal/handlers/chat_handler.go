package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medihelp/internal/middleware"
	"medihelp/internal/models"
	"medihelp/internal/services"
	"medihelp/internal/utils"
	ws "medihelp/pkg/websocket"
)

// ChatHandler exposes the conversation and message REST surface. Writes on
// this path are authoritative; connected peers receive the same change as a
// realtime event after persistence succeeds.
type ChatHandler struct {
	chatService *services.ChatService
	hub         *ws.Hub
}

func NewChatHandler(chatService *services.ChatService, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		hub:         hub,
	}
}

type createConversationRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

type sendMessageRequest struct {
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments"`
}

// GetConversations lists the caller's conversations, most recent first.
func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	views, err := h.chatService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Conversations retrieved successfully", views, &utils.Meta{Count: len(views)})
}

// CreateConversation finds or creates the individual conversation between
// the caller and the named participant. Returns 201 only when a new
// conversation was created, 200 when an existing one was reused.
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "participant_id is required")
		return
	}

	participantID, err := primitive.ObjectIDFromHex(req.ParticipantID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid participant ID")
		return
	}

	conversation, created, err := h.chatService.FindOrCreateConversation(c.Request.Context(), userID, participantID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	if created {
		utils.CreatedResponse(c, "Conversation created successfully", conversation)
		return
	}
	utils.SuccessResponse(c, "Conversation retrieved successfully", conversation)
}

// GetConversation returns a single conversation the caller participates in.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid conversation ID")
		return
	}

	conversation, err := h.chatService.GetConversation(c.Request.Context(), conversationID, userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Conversation retrieved successfully", conversation)
}

// GetMessages pages through a conversation's messages, oldest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid conversation ID")
		return
	}

	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatService.ListMessages(c.Request.Context(), conversationID, userID, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages retrieved successfully", messages, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	})
}

// SendMessage persists a message and relays it to connected participants.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid conversation ID")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid message payload")
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), conversationID, userID, req.Text, req.Attachments)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToConversation(conversationID.Hex(), ws.Event{
			Type:           ws.EventMessageReceived,
			ConversationID: conversationID.Hex(),
			UserID:         userID.Hex(),
			Timestamp:      time.Now().UnixMilli(),
			Data:           gin.H{"message": message},
		})
	}

	utils.CreatedResponse(c, "Message sent successfully", message)
}

// MarkRead records read receipts for the caller and resets their unread count.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid conversation ID")
		return
	}

	if err := h.chatService.MarkRead(c.Request.Context(), conversationID, userID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToConversation(conversationID.Hex(), ws.Event{
			Type:           ws.EventMessagesRead,
			ConversationID: conversationID.Hex(),
			UserID:         userID.Hex(),
			Timestamp:      time.Now().UnixMilli(),
		})
	}

	utils.SuccessResponse(c, "Conversation marked as read", nil)
}

// SearchMessages returns the caller's conversation messages matching a
// case-insensitive substring query.
func (h *ChatHandler) SearchMessages(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid conversation ID")
		return
	}

	messages, err := h.chatService.SearchMessages(c.Request.Context(), conversationID, userID, c.Query("q"))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages retrieved successfully", messages, &utils.Meta{Count: len(messages)})
}
