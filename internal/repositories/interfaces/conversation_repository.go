package interfaces

import (
	"context"

	"medihelp/internal/models"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversationRepository owns the conversations and messages collections.
//
// AppendMessage must persist the message, update the conversation snapshot
// fields and increment the unread count of every participant other than the
// sender atomically with respect to concurrent AppendMessage calls on the
// same conversation.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversationByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
	GetConversationByParticipants(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error)
	GetConversationsByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Conversation, error)

	AppendMessage(ctx context.Context, message *models.Message) error
	GetMessagesByConversation(ctx context.Context, conversationID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error)
	MarkConversationRead(ctx context.Context, conversationID, userID primitive.ObjectID) error
	SearchMessages(ctx context.Context, conversationID primitive.ObjectID, query string) ([]*models.Message, error)
}
