package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sam-nazarian/event-booking-practice/internal/model"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

const DefaultEventTTL = 5 * time.Minute

// RedisEventCacheManager 快取展開後的活動讀取結果。
// 寫入活動或重算評分時要失效，確保讀到的聚合是最新寫入的
type RedisEventCacheManager interface {
	GetEvent(ctx context.Context, id string) (*model.PopulatedEvent, error)
	SetEvent(ctx context.Context, event *model.PopulatedEvent) error
	Invalidate(ctx context.Context, id string) error
}

type RedisEventCacheManagerImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEventCacheManager(client *redis.Client, ttl time.Duration) RedisEventCacheManager {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &RedisEventCacheManagerImpl{
		client: client,
		ttl:    ttl,
	}
}

// 活動詳情 key
func (m *RedisEventCacheManagerImpl) getDetailKey(id string) string {
	return fmt.Sprintf("event:%s:detail", id)
}

func (m *RedisEventCacheManagerImpl) GetEvent(ctx context.Context, id string) (*model.PopulatedEvent, error) {
	val, err := m.client.Get(ctx, m.getDetailKey(id)).Result()
	if err == redis.Nil {
		return nil, apperrors.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var event model.PopulatedEvent
	if err := json.Unmarshal([]byte(val), &event); err != nil {
		return nil, fmt.Errorf("unmarshal cached event: %v", err)
	}
	return &event, nil
}

func (m *RedisEventCacheManagerImpl) SetEvent(ctx context.Context, event *model.PopulatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %v", err)
	}
	return m.client.Set(ctx, m.getDetailKey(event.ID.Hex()), data, m.ttl).Err()
}

func (m *RedisEventCacheManagerImpl) Invalidate(ctx context.Context, id string) error {
	return m.client.Del(ctx, m.getDetailKey(id)).Err()
}
