// Package memory holds in-memory repository implementations with the same
// semantics as the MongoDB ones. They back tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversationRepository struct {
	mu            sync.Mutex
	conversations map[primitive.ObjectID]*models.Conversation
	messages      map[primitive.ObjectID][]*models.Message
}

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		conversations: make(map[primitive.ObjectID]*models.Conversation),
		messages:      make(map[primitive.ObjectID][]*models.Message),
	}
}

func (r *ConversationRepository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation.ID = primitive.NewObjectID()
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt

	r.conversations[conversation.ID] = cloneConversation(conversation)

	return nil
}

func (r *ConversationRepository) GetConversationByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id.Hex(), utils.ErrNotFound)
	}

	return cloneConversation(conversation), nil
}

func (r *ConversationRepository) GetConversationByParticipants(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, conversation := range r.conversations {
		if conversation.Type != models.ConversationTypeIndividual {
			continue
		}
		if conversation.HasParticipant(userA) && conversation.HasParticipant(userB) {
			return cloneConversation(conversation), nil
		}
	}

	return nil, fmt.Errorf("conversation between participants: %w", utils.ErrNotFound)
}

func (r *ConversationRepository) GetConversationsByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conversations []*models.Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			conversations = append(conversations, cloneConversation(conversation))
		}
	}

	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessageAt, conversations[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return conversations, nil
}

// AppendMessage holds the repository lock across the message insert, the
// snapshot update and the unread increments, mirroring the single atomic
// update the MongoDB repository issues.
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[message.ConversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", message.ConversationID.Hex(), utils.ErrNotFound)
	}

	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt

	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], cloneMessage(message))

	now := message.CreatedAt
	conversation.LastMessage = message.Text
	conversation.LastMessageAt = &now
	senderID := message.SenderID
	conversation.LastSenderID = &senderID
	conversation.UpdatedAt = now

	for _, p := range conversation.Participants {
		if p != message.SenderID {
			conversation.UnreadCounts[p.Hex()]++
		}
	}

	return nil
}

func (r *ConversationRepository) GetMessagesByConversation(ctx context.Context, conversationID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var filtered []*models.Message
	for _, message := range r.messages[conversationID] {
		if params.Before != nil && !message.CreatedAt.Before(*params.Before) {
			continue
		}
		filtered = append(filtered, message)
	}

	// Oldest first, matching the backing-store ordering.
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))

	start := params.Offset()
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := make([]*models.Message, 0, end-start)
	for _, message := range filtered[start:end] {
		page = append(page, cloneMessage(message))
	}

	return page, total, nil
}

func (r *ConversationRepository) MarkConversationRead(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID.Hex(), utils.ErrNotFound)
	}

	now := time.Now()
	for _, message := range r.messages[conversationID] {
		if !message.IsReadBy(userID) {
			message.ReadBy = append(message.ReadBy, models.ReadReceipt{UserID: userID, ReadAt: now})
			message.UpdatedAt = now
		}
	}

	conversation.UnreadCounts[userID.Hex()] = 0
	conversation.UpdatedAt = now

	return nil
}

func (r *ConversationRepository) SearchMessages(ctx context.Context, conversationID primitive.ObjectID, query string) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(query)

	var matches []*models.Message
	for _, message := range r.messages[conversationID] {
		if strings.Contains(strings.ToLower(message.Text), needle) {
			matches = append(matches, cloneMessage(message))
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return matches, nil
}

func cloneConversation(c *models.Conversation) *models.Conversation {
	clone := *c
	clone.Participants = append([]primitive.ObjectID(nil), c.Participants...)
	clone.UnreadCounts = make(map[string]int, len(c.UnreadCounts))
	for k, v := range c.UnreadCounts {
		clone.UnreadCounts[k] = v
	}
	return &clone
}

func cloneMessage(m *models.Message) *models.Message {
	clone := *m
	clone.Attachments = append([]models.Attachment(nil), m.Attachments...)
	clone.ReadBy = append([]models.ReadReceipt(nil), m.ReadBy...)
	return &clone
}
