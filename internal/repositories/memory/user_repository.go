package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[primitive.ObjectID]*models.User),
	}
}

// Add seeds a user record. Registration itself belongs to the auth service.
func (r *UserRepository) Add(user *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	r.users[user.ID] = &clone
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), utils.ErrNotFound)
	}

	clone := *user
	return &clone, nil
}

func (r *UserRepository) GetProfilesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make(map[string]*models.UserProfile, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			profiles[id.Hex()] = user.Profile()
		}
	}

	return profiles, nil
}

func (r *UserRepository) UpdatePresence(ctx context.Context, id primitive.ObjectID, status models.PresenceStatus, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), utils.ErrNotFound)
	}

	user.Status = status
	seen := lastSeen
	user.LastSeen = &seen
	user.UpdatedAt = time.Now()

	return nil
}
