package mocks

import (
	"context"

	"github.com/sam-nazarian/event-booking-practice/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRedisEventCacheManager struct {
	mock.Mock
}

func NewMockRedisEventCacheManager() *MockRedisEventCacheManager {
	return &MockRedisEventCacheManager{}
}

func (m *MockRedisEventCacheManager) GetEvent(ctx context.Context, id string) (*model.PopulatedEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PopulatedEvent), args.Error(1)
}

func (m *MockRedisEventCacheManager) SetEvent(ctx context.Context, event *model.PopulatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRedisEventCacheManager) Invalidate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
