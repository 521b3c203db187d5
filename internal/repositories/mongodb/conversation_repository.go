package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/repositories/interfaces"
	"medihelp/internal/services"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type conversationRepository struct {
	conversationsCollection *mongo.Collection
	messagesCollection      *mongo.Collection
	cache                   services.CacheService
}

func NewConversationRepository(db *mongo.Database, cache services.CacheService) interfaces.ConversationRepository {
	return &conversationRepository{
		conversationsCollection: db.Collection("conversations"),
		messagesCollection:      db.Collection("messages"),
		cache:                   cache,
	}
}

func (r *conversationRepository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	conversation.ID = primitive.NewObjectID()
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = time.Now()

	_, err := r.conversationsCollection.InsertOne(ctx, conversation)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	r.cacheConversation(ctx, conversation)

	return nil
}

func (r *conversationRepository) GetConversationByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	if conversation := r.getConversationFromCache(ctx, id.Hex()); conversation != nil {
		return conversation, nil
	}

	var conversation models.Conversation
	err := r.conversationsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversation %s: %w", id.Hex(), utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	r.cacheConversation(ctx, &conversation)

	return &conversation, nil
}

func (r *conversationRepository) GetConversationByParticipants(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error) {
	filter := bson.M{
		"type": models.ConversationTypeIndividual,
		"participants": bson.M{
			"$all":  []primitive.ObjectID{userA, userB},
			"$size": 2,
		},
	}

	var conversation models.Conversation
	err := r.conversationsCollection.FindOne(ctx, filter).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversation between participants: %w", utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation by participants: %w", err)
	}

	return &conversation, nil
}

func (r *conversationRepository) GetConversationsByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Conversation, error) {
	filter := bson.M{"participants": userID}
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})

	cursor, err := r.conversationsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []*models.Conversation
	for cursor.Next(ctx) {
		var conversation models.Conversation
		if err := cursor.Decode(&conversation); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		conversations = append(conversations, &conversation)
	}

	return conversations, nil
}

// AppendMessage inserts the message and folds the snapshot update and the
// unread increments for the other participants into a single UpdateOne, so
// concurrent sends on one conversation cannot lose an increment.
func (r *conversationRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	conversation, err := r.GetConversationByID(ctx, message.ConversationID)
	if err != nil {
		return err
	}

	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt

	if _, err := r.messagesCollection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	increments := bson.M{}
	for _, p := range conversation.Participants {
		if p != message.SenderID {
			increments["unread_counts."+p.Hex()] = 1
		}
	}

	update := bson.M{
		"$set": bson.M{
			"last_message":    message.Text,
			"last_message_at": message.CreatedAt,
			"last_sender_id":  message.SenderID,
			"updated_at":      message.CreatedAt,
		},
	}
	if len(increments) > 0 {
		update["$inc"] = increments
	}

	_, err = r.conversationsCollection.UpdateOne(ctx, bson.M{"_id": message.ConversationID}, update)
	if err != nil {
		return fmt.Errorf("failed to update conversation snapshot: %w", err)
	}

	r.invalidateConversationCache(ctx, message.ConversationID.Hex())

	return nil
}

func (r *conversationRepository) GetMessagesByConversation(ctx context.Context, conversationID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Message, int64, error) {
	filter := bson.M{"conversation_id": conversationID}
	if params.Before != nil {
		filter["created_at"] = bson.M{"$lt": *params.Before}
	}

	total, err := r.messagesCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.Limit))

	cursor, err := r.messagesCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	for cursor.Next(ctx) {
		var message models.Message
		if err := cursor.Decode(&message); err != nil {
			return nil, 0, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *conversationRepository) MarkConversationRead(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	receipt := models.ReadReceipt{
		UserID: userID,
		ReadAt: time.Now(),
	}

	_, err := r.messagesCollection.UpdateMany(
		ctx,
		bson.M{
			"conversation_id": conversationID,
			"read_by.user_id": bson.M{"$ne": userID},
		},
		bson.M{
			"$push": bson.M{"read_by": receipt},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages as read: %w", err)
	}

	_, err = r.conversationsCollection.UpdateOne(
		ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{
			"unread_counts." + userID.Hex(): 0,
			"updated_at":                    time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to reset unread count: %w", err)
	}

	r.invalidateConversationCache(ctx, conversationID.Hex())

	return nil
}

func (r *conversationRepository) SearchMessages(ctx context.Context, conversationID primitive.ObjectID, query string) ([]*models.Message, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"text":            bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"},
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.messagesCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	for cursor.Next(ctx) {
		var message models.Message
		if err := cursor.Decode(&message); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

// Cache operations
func (r *conversationRepository) cacheConversation(ctx context.Context, conversation *models.Conversation) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("conversation:%s", conversation.ID.Hex())
		r.cache.Set(ctx, cacheKey, conversation, 15*time.Minute)
	}
}

func (r *conversationRepository) getConversationFromCache(ctx context.Context, conversationID string) *models.Conversation {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("conversation:%s", conversationID)
	var conversation models.Conversation
	if err := r.cache.Get(ctx, cacheKey, &conversation); err != nil {
		return nil
	}

	return &conversation
}

func (r *conversationRepository) invalidateConversationCache(ctx context.Context, conversationID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("conversation:%s", conversationID)
		r.cache.Delete(ctx, cacheKey)
	}
}
