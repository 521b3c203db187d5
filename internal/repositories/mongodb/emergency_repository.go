package mongodb

import (
	"context"
	"fmt"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/repositories/interfaces"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type emergencyRepository struct {
	collection *mongo.Collection
}

func NewEmergencyRepository(db *mongo.Database) interfaces.EmergencyRepository {
	return &emergencyRepository{
		collection: db.Collection("emergency_requests"),
	}
}

func (r *emergencyRepository) Create(ctx context.Context, request *models.EmergencyRequest) error {
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create emergency request: %w", err)
	}

	return nil
}

func (r *emergencyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error) {
	var request models.EmergencyRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("emergency request %s: %w", id.Hex(), utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get emergency request: %w", err)
	}

	return &request, nil
}

func (r *emergencyRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.EmergencyRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find emergency requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.EmergencyRequest
	for cursor.Next(ctx) {
		var request models.EmergencyRequest
		if err := cursor.Decode(&request); err != nil {
			return nil, fmt.Errorf("failed to decode emergency request: %w", err)
		}
		requests = append(requests, &request)
	}

	return requests, nil
}

// TransitionStatus is a compare-and-set on the status field: the update only
// matches while the record is still in the expected status, so two racing
// transitions cannot both win.
func (r *emergencyRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.EmergencyStatus, updates map[string]interface{}) (bool, error) {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for field, value := range updates {
		set[field] = value
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition emergency status: %w", err)
	}

	return result.MatchedCount > 0, nil
}
