package interfaces

import (
	"context"

	"medihelp/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmergencyRepository owns the emergency_requests collection. Records are
// never deleted; they form the audit trail.
type EmergencyRepository interface {
	Create(ctx context.Context, request *models.EmergencyRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.EmergencyRequest, error)

	// TransitionStatus performs a compare-and-set from the expected current
	// status, applying the extra field updates in the same write. It returns
	// false when the record was no longer in the expected status.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.EmergencyStatus, updates map[string]interface{}) (bool, error)
}
