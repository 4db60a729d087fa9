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

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) (*model.Review, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error)
	// ListByEventID 活動的 reviews 永遠以外鍵查詢現算，不做反向快取
	ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, params model.UpdateReviewParams) (*model.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AggregateByEventID 統計某活動的評論數與平均評分。
	// $sum 對每筆評論加一，$avg 只平均有 rating 的評論
	AggregateByEventID(ctx context.Context, eventID primitive.ObjectID) (model.RatingStats, error)
}

type ReviewRepositoryImpl struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &ReviewRepositoryImpl{
		collection: db.Collection("reviews"),
	}
}

func (r *ReviewRepositoryImpl) Create(ctx context.Context, review *model.Review) (*model.Review, error) {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, err
	}

	review.ID = result.InsertedID.(primitive.ObjectID)
	return review, nil
}

func (r *ReviewRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error) {
	var review model.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"event": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]*model.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, params model.UpdateReviewParams) (*model.Review, error) {
	sets := bson.M{}

	if params.Review != nil {
		sets["review"] = *params.Review
	}
	if params.Rating != nil {
		sets["rating"] = *params.Rating
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review model.Review
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": sets}, opts).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, err
	}

	return &review, nil
}

func (r *ReviewRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepositoryImpl) AggregateByEventID(ctx context.Context, eventID primitive.ObjectID) (model.RatingStats, error) {
	pipeline := []bson.M{
		{
			"$match": bson.M{"event": eventID},
		},
		{
			"$group": bson.M{
				"_id":       "$event",
				"nRating":   bson.M{"$sum": 1},
				"avgRating": bson.M{"$avg": "$rating"},
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return model.RatingStats{}, err
	}
	defer cursor.Close(ctx)

	// avgRating 在所有評論都沒有 rating 時是 null
	var results []struct {
		NRating   int      `bson:"nRating"`
		AvgRating *float64 `bson:"avgRating"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return model.RatingStats{}, err
	}

	if len(results) == 0 {
		return model.RatingStats{}, nil
	}

	stats := model.RatingStats{Quantity: results[0].NRating}
	if results[0].AvgRating != nil {
		stats.Average = *results[0].AvgRating
	}
	return stats, nil
}
