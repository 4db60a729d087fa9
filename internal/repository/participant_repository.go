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

type ParticipantRepository interface {
	Create(ctx context.Context, participant *model.Participant) (*model.Participant, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Participant, error)
	ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Participant, error)
	Update(ctx context.Context, id primitive.ObjectID, params model.UpdateParticipantParams) (*model.Participant, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ParticipantRepositoryImpl struct {
	collection *mongo.Collection
}

func NewParticipantRepository(db *mongo.Database) ParticipantRepository {
	return &ParticipantRepositoryImpl{
		collection: db.Collection("participants"),
	}
}

func (r *ParticipantRepositoryImpl) Create(ctx context.Context, participant *model.Participant) (*model.Participant, error) {
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, participant)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateParticipant
		}
		return nil, err
	}

	participant.ID = result.InsertedID.(primitive.ObjectID)
	return participant, nil
}

func (r *ParticipantRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Participant, error) {
	var participant model.Participant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&participant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrParticipantNotFound
		}
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepositoryImpl) ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Participant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"event": eventID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	participants := make([]*model.Participant, 0)
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *ParticipantRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, params model.UpdateParticipantParams) (*model.Participant, error) {
	if params.Attending == nil {
		return nil, apperrors.ErrInvalidInput
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"attending": *params.Attending}}

	var participant model.Participant
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&participant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrParticipantNotFound
		}
		return nil, err
	}

	return &participant, nil
}

func (r *ParticipantRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrParticipantNotFound
	}
	return nil
}
