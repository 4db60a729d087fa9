package mocks

import (
	"context"

	"github.com/sam-nazarian/event-booking-practice/internal/model"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockParticipantRepository struct {
	mock.Mock
}

func NewMockParticipantRepository() *MockParticipantRepository {
	return &MockParticipantRepository{}
}

func (m *MockParticipantRepository) Create(ctx context.Context, participant *model.Participant) (*model.Participant, error) {
	args := m.Called(ctx, participant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Participant, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Update(ctx context.Context, id primitive.ObjectID, params model.UpdateParticipantParams) (*model.Participant, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
