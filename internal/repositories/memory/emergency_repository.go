package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyRepository struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.EmergencyRequest
}

func NewEmergencyRepository() *EmergencyRepository {
	return &EmergencyRepository{
		requests: make(map[primitive.ObjectID]*models.EmergencyRequest),
	}
}

func (r *EmergencyRepository) Create(ctx context.Context, request *models.EmergencyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt

	clone := *request
	r.requests[request.ID] = &clone

	return nil
}

func (r *EmergencyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("emergency request %s: %w", id.Hex(), utils.ErrNotFound)
	}

	clone := *request
	return &clone, nil
}

func (r *EmergencyRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.EmergencyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var requests []*models.EmergencyRequest
	for _, request := range r.requests {
		if request.UserID == userID {
			clone := *request
			requests = append(requests, &clone)
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})

	return requests, nil
}

func (r *EmergencyRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.EmergencyStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return false, fmt.Errorf("emergency request %s: %w", id.Hex(), utils.ErrNotFound)
	}

	if request.Status != from {
		return false, nil
	}

	request.Status = to
	request.UpdatedAt = time.Now()

	for field, value := range updates {
		switch field {
		case "dispatched_at":
			if t, ok := value.(time.Time); ok {
				request.DispatchedAt = &t
			}
		case "resolved_at":
			if t, ok := value.(time.Time); ok {
				request.ResolvedAt = &t
			}
		}
	}

	return true, nil
}
