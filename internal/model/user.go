package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 帳號資料由外部的驗證服務維護，這裡只讀取做 organiser 展開
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Photo     string             `json:"photo,omitempty" bson:"photo,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
