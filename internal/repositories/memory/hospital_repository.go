package memory

import (
	"context"
	"fmt"
	"sync"

	"medihelp/internal/models"
	"medihelp/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HospitalRepository struct {
	mu        sync.RWMutex
	hospitals map[primitive.ObjectID]*models.Hospital
	order     []primitive.ObjectID
}

func NewHospitalRepository(hospitals ...*models.Hospital) *HospitalRepository {
	r := &HospitalRepository{
		hospitals: make(map[primitive.ObjectID]*models.Hospital),
	}
	for _, h := range hospitals {
		r.Add(h)
	}
	return r
}

func (r *HospitalRepository) Add(hospital *models.Hospital) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if hospital.ID.IsZero() {
		hospital.ID = primitive.NewObjectID()
	}
	clone := *hospital
	r.hospitals[hospital.ID] = &clone
	r.order = append(r.order, hospital.ID)
}

func (r *HospitalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hospital, ok := r.hospitals[id]
	if !ok {
		return nil, fmt.Errorf("hospital %s: %w", id.Hex(), utils.ErrNotFound)
	}

	clone := *hospital
	return &clone, nil
}

func (r *HospitalRepository) ListAll(ctx context.Context) ([]*models.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hospitals := make([]*models.Hospital, 0, len(r.order))
	for _, id := range r.order {
		clone := *r.hospitals[id]
		hospitals = append(hospitals, &clone)
	}

	return hospitals, nil
}
