package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review 評論模型，(event, user) 組合唯一
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Review    string             `json:"review" bson:"review"`
	Rating    *int               `json:"rating,omitempty" bson:"rating,omitempty"`
	Event     primitive.ObjectID `json:"event" bson:"event"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// HasValidRating rating 可省略，有值時必須落在 1~5
func (r *Review) HasValidRating() bool {
	if r.Rating == nil {
		return true
	}
	return *r.Rating >= MinRating && *r.Rating <= MaxRating
}

type UpdateReviewParams struct {
	Review *string
	Rating *int
}

func (p *UpdateReviewParams) IsEmpty() bool {
	return p.Review == nil && p.Rating == nil
}

// RatingStats $match/$group 聚合結果
type RatingStats struct {
	Quantity int
	Average  float64
}
