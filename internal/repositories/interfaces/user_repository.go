package interfaces

import (
	"context"
	"time"

	"medihelp/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is the read/update surface onto the externally-owned users
// collection. Registration and credentials live with the auth collaborator.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetProfilesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]*models.UserProfile, error)
	UpdatePresence(ctx context.Context, id primitive.ObjectID, status models.PresenceStatus, lastSeen time.Time) error
}
