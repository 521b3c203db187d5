package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string
type PresenceStatus string

const (
	UserRolePatient  UserRole = "patient"
	UserRoleDoctor   UserRole = "doctor"
	UserRolePharmacy UserRole = "pharmacy"
	UserRoleAdmin    UserRole = "admin"

	PresenceStatusOnline  PresenceStatus = "online"
	PresenceStatusOffline PresenceStatus = "offline"
	PresenceStatusAway    PresenceStatus = "away"
)

// User is owned by the auth collaborator; this service only reads profile
// fields and updates status/last_seen.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name" validate:"required"`
	Email     string             `json:"email" bson:"email" validate:"required,email"`
	Phone     string             `json:"phone" bson:"phone"`
	Role      UserRole           `json:"role" bson:"role" validate:"required"`
	Avatar    string             `json:"avatar" bson:"avatar"`
	Status    PresenceStatus     `json:"status" bson:"status" default:"offline"`
	LastSeen  *time.Time         `json:"last_seen" bson:"last_seen"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// UserProfile is the public subset exposed to conversation counterparts.
type UserProfile struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Role     UserRole           `json:"role" bson:"role"`
	Avatar   string             `json:"avatar" bson:"avatar"`
	Status   PresenceStatus     `json:"status" bson:"status"`
	LastSeen *time.Time         `json:"last_seen" bson:"last_seen"`
}

func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:       u.ID,
		Name:     u.Name,
		Role:     u.Role,
		Avatar:   u.Avatar,
		Status:   u.Status,
		LastSeen: u.LastSeen,
	}
}
