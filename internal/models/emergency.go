package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyType string
type EmergencyStatus string

const (
	EmergencyTypeMedical  EmergencyType = "medical"
	EmergencyTypeAccident EmergencyType = "accident"
	EmergencyTypeOther    EmergencyType = "other"

	EmergencyStatusPending      EmergencyStatus = "pending"
	EmergencyStatusAcknowledged EmergencyStatus = "acknowledged"
	EmergencyStatusDispatched   EmergencyStatus = "dispatched"
	EmergencyStatusResolved     EmergencyStatus = "resolved"
	EmergencyStatusCancelled    EmergencyStatus = "cancelled"
)

type MedicalInfo struct {
	BloodGroup        string   `json:"blood_group" bson:"blood_group"`
	Allergies         []string `json:"allergies" bson:"allergies"`
	MedicalConditions []string `json:"medical_conditions" bson:"medical_conditions"`
}

// EmergencyRequest is the persisted SOS record. Requests are never deleted;
// resolved and cancelled are terminal states.
type EmergencyRequest struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	Location     GeoPoint            `json:"location" bson:"location" validate:"required"`
	Type         EmergencyType       `json:"emergency_type" bson:"emergency_type" default:"medical"`
	Description  string              `json:"description" bson:"description"`
	MedicalInfo  *MedicalInfo        `json:"medical_info" bson:"medical_info"`
	HospitalID   *primitive.ObjectID `json:"hospital_id" bson:"hospital_id"`
	Status       EmergencyStatus     `json:"status" bson:"status" default:"pending"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
	DispatchedAt *time.Time          `json:"dispatched_at" bson:"dispatched_at"`
	ResolvedAt   *time.Time          `json:"resolved_at" bson:"resolved_at"`
}

// emergencyTransitions encodes the status state machine: the happy path is
// pending -> acknowledged -> dispatched -> resolved, and cancellation is
// allowed from any non-terminal state.
var emergencyTransitions = map[EmergencyStatus][]EmergencyStatus{
	EmergencyStatusPending:      {EmergencyStatusAcknowledged, EmergencyStatusCancelled},
	EmergencyStatusAcknowledged: {EmergencyStatusDispatched, EmergencyStatusCancelled},
	EmergencyStatusDispatched:   {EmergencyStatusResolved, EmergencyStatusCancelled},
	EmergencyStatusResolved:     {},
	EmergencyStatusCancelled:    {},
}

func (s EmergencyStatus) CanTransitionTo(next EmergencyStatus) bool {
	for _, allowed := range emergencyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s EmergencyStatus) Terminal() bool {
	return s == EmergencyStatusResolved || s == EmergencyStatusCancelled
}

func ValidEmergencyStatus(s EmergencyStatus) bool {
	_, ok := emergencyTransitions[s]
	return ok
}

func ValidEmergencyType(t EmergencyType) bool {
	switch t {
	case EmergencyTypeMedical, EmergencyTypeAccident, EmergencyTypeOther:
		return true
	}
	return false
}
