package mongodb

import (
	"context"
	"fmt"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/repositories/interfaces"
	"medihelp/internal/services"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const hospitalListCacheKey = "hospitals:all"

type hospitalRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewHospitalRepository(db *mongo.Database, cache services.CacheService) interfaces.HospitalRepository {
	return &hospitalRepository{
		collection: db.Collection("hospitals"),
		cache:      cache,
	}
}

func (r *hospitalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hospital)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("hospital %s: %w", id.Hex(), utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}

	return &hospital, nil
}

// ListAll reads the full reference set, cached briefly since the collection
// changes rarely and every nearby lookup scans it.
func (r *hospitalRepository) ListAll(ctx context.Context) ([]*models.Hospital, error) {
	if r.cache != nil {
		var cached []*models.Hospital
		if err := r.cache.Get(ctx, hospitalListCacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	defer cursor.Close(ctx)

	var hospitals []*models.Hospital
	for cursor.Next(ctx) {
		var hospital models.Hospital
		if err := cursor.Decode(&hospital); err != nil {
			return nil, fmt.Errorf("failed to decode hospital: %w", err)
		}
		hospitals = append(hospitals, &hospital)
	}

	if r.cache != nil && len(hospitals) > 0 {
		r.cache.Set(ctx, hospitalListCacheKey, hospitals, 5*time.Minute)
	}

	return hospitals, nil
}
