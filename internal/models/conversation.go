package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversationType string

const (
	ConversationTypeIndividual ConversationType = "individual"
	ConversationTypeGroup      ConversationType = "group"
)

// Conversation pairs exactly two participants. UnreadCounts is keyed by the
// participant's hex ID and carries one entry per participant.
type Conversation struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Participants  []primitive.ObjectID `json:"participants" bson:"participants" validate:"required,len=2"`
	Type          ConversationType     `json:"type" bson:"type" default:"individual"`
	LastMessage   string               `json:"last_message" bson:"last_message"`
	LastMessageAt *time.Time           `json:"last_message_at" bson:"last_message_at"`
	LastSenderID  *primitive.ObjectID  `json:"last_sender_id" bson:"last_sender_id"`
	UnreadCounts  map[string]int       `json:"unread_counts" bson:"unread_counts"`
	CreatedBy     primitive.ObjectID   `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Counterpart returns the other participant of a two-party conversation.
func (c *Conversation) Counterpart(userID primitive.ObjectID) (primitive.ObjectID, bool) {
	for _, p := range c.Participants {
		if p != userID {
			return p, true
		}
	}
	return primitive.NilObjectID, false
}

func (c *Conversation) UnreadFor(userID primitive.ObjectID) int {
	return c.UnreadCounts[userID.Hex()]
}
