package service

import (
	"context"

	"github.com/sam-nazarian/event-booking-practice/internal/model"
	"github.com/sam-nazarian/event-booking-practice/internal/repository"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ParticipantService interface {
	Create(ctx context.Context, participant *model.Participant) (*model.Participant, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Participant, error)
	ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Participant, error)
	Update(ctx context.Context, id primitive.ObjectID, params model.UpdateParticipantParams) (*model.Participant, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ParticipantServiceImpl struct {
	repo repository.ParticipantRepository
}

func NewParticipantService(repo repository.ParticipantRepository) ParticipantService {
	return &ParticipantServiceImpl{repo: repo}
}

func (s *ParticipantServiceImpl) Create(ctx context.Context, participant *model.Participant) (*model.Participant, error) {
	if participant.Attending == nil {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Create(ctx, participant)
}

func (s *ParticipantServiceImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Participant, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ParticipantServiceImpl) ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Participant, error) {
	return s.repo.ListByEventID(ctx, eventID)
}

func (s *ParticipantServiceImpl) Update(ctx context.Context, id primitive.ObjectID, params model.UpdateParticipantParams) (*model.Participant, error) {
	return s.repo.Update(ctx, id, params)
}

func (s *ParticipantServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}
