package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/repositories/interfaces"
	"medihelp/internal/utils"
	"medihelp/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService owns the conversation and message lifecycle: find-or-create,
// listing, sending with unread-count bookkeeping, read receipts and search.
type ChatService struct {
	conversations interfaces.ConversationRepository
	users         interfaces.UserRepository
	log           *logger.Logger
}

func NewChatService(conversations interfaces.ConversationRepository, users interfaces.UserRepository, log *logger.Logger) *ChatService {
	return &ChatService{
		conversations: conversations,
		users:         users,
		log:           log,
	}
}

// ConversationView is a conversation annotated for one caller: the other
// participant's public profile and the caller's own unread count.
type ConversationView struct {
	*models.Conversation
	Counterpart *models.UserProfile `json:"counterpart,omitempty"`
	UnreadCount int                 `json:"unread_count"`
}

// FindOrCreateConversation returns the existing individual conversation
// between the two users, or creates one with both unread counts at zero.
// The boolean reports whether a new conversation was created. Argument order
// does not matter.
func (s *ChatService) FindOrCreateConversation(ctx context.Context, userID, participantID primitive.ObjectID) (*models.Conversation, bool, error) {
	if userID.IsZero() || participantID.IsZero() {
		return nil, false, fmt.Errorf("%w: both participants are required", utils.ErrValidation)
	}
	if userID == participantID {
		return nil, false, fmt.Errorf("%w: cannot start a conversation with yourself", utils.ErrValidation)
	}

	existing, err := s.conversations.GetConversationByParticipants(ctx, userID, participantID)
	if err == nil {
		return existing, false, nil
	}

	// Canonical participant order keeps the pair unique regardless of who
	// initiates.
	participants := []primitive.ObjectID{userID, participantID}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Hex() < participants[j].Hex()
	})

	conversation := &models.Conversation{
		Participants: participants,
		Type:         models.ConversationTypeIndividual,
		UnreadCounts: map[string]int{
			userID.Hex():        0,
			participantID.Hex(): 0,
		},
		CreatedBy: userID,
	}

	if err := s.conversations.CreateConversation(ctx, conversation); err != nil {
		return nil, false, err
	}

	s.log.WithFields(map[string]interface{}{
		"conversation_id": conversation.ID.Hex(),
		"created_by":      userID.Hex(),
	}).Info("conversation created")

	return conversation, true, nil
}

// ListConversations returns the caller's conversations newest-first, each
// annotated with the counterpart profile and the caller's unread count.
func (s *ChatService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]*ConversationView, error) {
	conversations, err := s.conversations.GetConversationsByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	counterpartIDs := make([]primitive.ObjectID, 0, len(conversations))
	for _, conversation := range conversations {
		if counterpart, ok := conversation.Counterpart(userID); ok {
			counterpartIDs = append(counterpartIDs, counterpart)
		}
	}

	profiles, err := s.users.GetProfilesByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, err
	}

	views := make([]*ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		view := &ConversationView{
			Conversation: conversation,
			UnreadCount:  conversation.UnreadFor(userID),
		}
		if counterpart, ok := conversation.Counterpart(userID); ok {
			view.Counterpart = profiles[counterpart.Hex()]
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *ChatService) GetConversation(ctx context.Context, id, requesterID primitive.ObjectID) (*models.Conversation, error) {
	conversation, err := s.conversations.GetConversationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !conversation.HasParticipant(requesterID) {
		return nil, fmt.Errorf("%w: not a participant of conversation %s", utils.ErrForbidden, id.Hex())
	}

	return conversation, nil
}

func (s *ChatService) ListMessages(ctx context.Context, conversationID, requesterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error) {
	if _, err := s.GetConversation(ctx, conversationID, requesterID); err != nil {
		return nil, 0, err
	}

	return s.conversations.GetMessagesByConversation(ctx, conversationID, params)
}

// SendMessage persists the message and updates the conversation snapshot.
// The message must carry text or at least one attachment, and the sender
// must be a participant. The sender is the first read receipt.
func (s *ChatService) SendMessage(ctx context.Context, conversationID, senderID primitive.ObjectID, text string, attachments []models.Attachment) (*models.Message, error) {
	if text == "" && len(attachments) == 0 {
		return nil, fmt.Errorf("%w: message requires text or attachments", utils.ErrValidation)
	}

	conversation, err := s.conversations.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, fmt.Errorf("%w: sender is not a participant of conversation %s", utils.ErrForbidden, conversationID.Hex())
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Attachments:    attachments,
		ReadBy: []models.ReadReceipt{
			{UserID: senderID, ReadAt: time.Now()},
		},
	}

	if err := s.conversations.AppendMessage(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

// MarkRead adds the caller to the read receipts of every unread message in
// the conversation and resets the caller's unread count. Idempotent.
func (s *ChatService) MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	if _, err := s.GetConversation(ctx, conversationID, userID); err != nil {
		return err
	}

	return s.conversations.MarkConversationRead(ctx, conversationID, userID)
}

func (s *ChatService) SearchMessages(ctx context.Context, conversationID, requesterID primitive.ObjectID, query string) ([]*models.Message, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", utils.ErrValidation)
	}

	if _, err := s.GetConversation(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}

	return s.conversations.SearchMessages(ctx, conversationID, query)
}
