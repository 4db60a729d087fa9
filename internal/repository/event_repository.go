package repository

import (
	"context"
	"time"

	"github.com/sam-nazarian/event-booking-practice/internal/model"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// UpdateRating 將聚合結果寫回活動，評分固定四捨五入到一位小數
	UpdateRating(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error
	// FindWithinSphere 以 [lng, lat] 為圓心、radius（弧度）為半徑的球面圓內搜尋
	FindWithinSphere(ctx context.Context, lng, lat, radius float64) ([]*model.Event, error)
	// DistancesFrom geoNear 聚合，結果依距離遞增，distance 已乘上 multiplier
	DistancesFrom(ctx context.Context, lng, lat, multiplier float64) ([]*model.EventDistance, error)
}

type EventRepositoryImpl struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) EventRepository {
	return &EventRepositoryImpl{
		collection: db.Collection("events"),
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateEventName
		}
		return nil, err
	}

	event.ID = result.InsertedID.(primitive.ObjectID)
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context) ([]*model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]*model.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error) {
	var event model.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, params model.UpdateEventParams) (*model.Event, error) {
	sets := bson.M{}

	if params.Name != nil {
		sets["name"] = *params.Name
	}
	if params.Slug != nil {
		sets["slug"] = *params.Slug
	}
	if params.Price != nil {
		sets["price"] = *params.Price
	}
	if params.Summary != nil {
		sets["summary"] = *params.Summary
	}
	if params.Description != nil {
		sets["description"] = *params.Description
	}
	if params.StartDate != nil {
		sets["startDate"] = *params.StartDate
	}
	if params.Location != nil {
		sets["location"] = *params.Location
	}
	if params.Organiser != nil {
		sets["organiser"] = *params.Organiser
	}
	if params.ImageCover != nil {
		sets["imageCover"] = *params.ImageCover
	}
	if params.Images != nil {
		sets["images"] = params.Images
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event model.Event
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": sets}, opts).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrEventNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateEventName
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

func (r *EventRepositoryImpl) UpdateRating(ctx context.Context, id primitive.ObjectID, quantity int, average float64) error {
	update := bson.M{"$set": bson.M{
		"ratingsQuantity": quantity,
		"ratingsAverage":  average,
	}}

	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

func (r *EventRepositoryImpl) FindWithinSphere(ctx context.Context, lng, lat, radius float64) ([]*model.Event, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radius},
			},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]*model.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) DistancesFrom(ctx context.Context, lng, lat, multiplier float64) ([]*model.EventDistance, error) {
	// geoNear 必須是聚合管線的第一個 stage，依賴 location 的 2dsphere 索引，
	// 結果自動依距離遞增
	pipeline := []bson.M{
		{
			"$geoNear": bson.M{
				"near": bson.M{
					"type":        "Point",
					"coordinates": bson.A{lng, lat},
				},
				"distanceField":      "distance",
				"distanceMultiplier": multiplier,
				"spherical":          true,
			},
		},
		{
			"$project": bson.M{
				"distance": 1,
				"name":     1,
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	distances := make([]*model.EventDistance, 0)
	if err := cursor.All(ctx, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}
