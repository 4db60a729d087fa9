package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant 活動出席回覆，(event, user) 組合唯一
type Participant struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Attending *bool              `json:"attending" bson:"attending"`
	Event     primitive.ObjectID `json:"event" bson:"event"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type UpdateParticipantParams struct {
	Attending *bool
}
