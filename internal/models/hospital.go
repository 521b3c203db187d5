package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hospital is reference data, read-only to this service.
type Hospital struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name" validate:"required"`
	Location  GeoPoint           `json:"location" bson:"location" validate:"required"`
	Email     string             `json:"email" bson:"email"`
	Contact   string             `json:"contact" bson:"contact"`
	Address   string             `json:"address" bson:"address"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// HospitalDistance annotates a hospital with its distance from a query point.
type HospitalDistance struct {
	Hospital   *Hospital `json:"hospital"`
	DistanceKm float64   `json:"distance_km"`
}
