package interfaces

import (
	"context"

	"medihelp/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HospitalRepository reads the hospital reference set.
type HospitalRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error)
	ListAll(ctx context.Context) ([]*models.Hospital, error)
}
