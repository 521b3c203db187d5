package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Attachment struct {
	URL      string `json:"url" bson:"url" validate:"required"`
	Name     string `json:"name" bson:"name"`
	MimeType string `json:"mime_type" bson:"mime_type"`
	Size     int64  `json:"size" bson:"size"`
}

type ReadReceipt struct {
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`
	ReadAt time.Time          `json:"read_at" bson:"read_at"`
}

// Message belongs to exactly one conversation. ReadBy always contains the
// sender; it only ever grows.
type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id" validate:"required"`
	SenderID       primitive.ObjectID `json:"sender_id" bson:"sender_id" validate:"required"`
	Text           string             `json:"text" bson:"text"`
	Attachments    []Attachment       `json:"attachments" bson:"attachments"`
	ReadBy         []ReadReceipt      `json:"read_by" bson:"read_by"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

func (m *Message) IsReadBy(userID primitive.ObjectID) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

func (m *Message) Empty() bool {
	return m.Text == "" && len(m.Attachments) == 0
}
