package model

import (
	"time"
	"unicode"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinEventNameLen = 10
	MaxEventNameLen = 40

	// DefaultRatingsAverage 沒有任何評論時的預設評分
	DefaultRatingsAverage = 4.5

	MinRating = 1.0
	MaxRating = 5.0
)

// Location GeoJSON Point，coordinates 順序為 [lng, lat]
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address" bson:"address"`
}

// IsValid 必須是帶兩個座標與地址的 Point
func (l *Location) IsValid() bool {
	return l.Type == "Point" && len(l.Coordinates) == 2 && l.Address != ""
}

func (l *Location) Lng() float64 { return l.Coordinates[0] }
func (l *Location) Lat() float64 { return l.Coordinates[1] }

// Event 活動模型
type Event struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name            string              `json:"name" bson:"name"`
	Slug            string              `json:"slug" bson:"slug"`
	RatingsAverage  float64             `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                 `json:"ratingsQuantity" bson:"ratingsQuantity"`
	Price           float64             `json:"price" bson:"price"`
	Summary         string              `json:"summary" bson:"summary"`
	Description     string              `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string              `json:"imageCover,omitempty" bson:"imageCover,omitempty"`
	Images          []string            `json:"images,omitempty" bson:"images,omitempty"`
	StartDate       time.Time           `json:"startDate" bson:"startDate"`
	Location        Location            `json:"location" bson:"location"`
	Organiser       *primitive.ObjectID `json:"organiser,omitempty" bson:"organiser,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}

type UpdateEventParams struct {
	Name        *string
	Slug        *string
	Price       *float64
	Summary     *string
	Description *string
	StartDate   *time.Time
	Location    *Location
	Organiser   *primitive.ObjectID
	ImageCover  *string
	Images      []string
}

// IsEmpty 沒有任何欄位要更新
func (p *UpdateEventParams) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Summary == nil &&
		p.Description == nil && p.StartDate == nil && p.Location == nil &&
		p.Organiser == nil && p.ImageCover == nil && p.Images == nil
}

// ValidateEventName 10~40 字，只允許字母與空白
func ValidateEventName(name string) bool {
	runes := []rune(name)
	if len(runes) < MinEventNameLen || len(runes) > MaxEventNameLen {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

// SlugFromName 寫入前一律由 name 重新推導
func SlugFromName(name string) string {
	return slug.Make(name)
}

// PopulatedEvent 讀取時組裝的回應：organiser 換成完整文件，reviews 以查詢現算
type PopulatedEvent struct {
	Event
	Organiser *User     `json:"organiser,omitempty"`
	Reviews   []*Review `json:"reviews"`
}

// EventDistance geoNear 聚合的投影結果，distance 已套用單位換算
type EventDistance struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Distance float64            `json:"distance" bson:"distance"`
}
