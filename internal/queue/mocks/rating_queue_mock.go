package mocks

import (
	"context"

	"github.com/sam-nazarian/event-booking-practice/internal/queue"

	"github.com/stretchr/testify/mock"
)

type MockRatingQueue struct {
	mock.Mock
}

func NewMockRatingQueue() *MockRatingQueue {
	return &MockRatingQueue{}
}

func (m *MockRatingQueue) PublishRecompute(ctx context.Context, job *queue.RecomputeJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockRatingQueue) SubscribeRecomputes(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
