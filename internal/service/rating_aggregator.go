package service

import (
	"context"
	"math"
	"sync"

	"github.com/sam-nazarian/event-booking-practice/internal/cache"
	"github.com/sam-nazarian/event-booking-practice/internal/model"
	"github.com/sam-nazarian/event-booking-practice/internal/repository"
	"github.com/sam-nazarian/event-booking-practice/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RatingAggregator 重算活動的評論數與平均評分並寫回活動。
// 冪等：評論集合沒變的話，重複呼叫得到相同結果
type RatingAggregator interface {
	Recompute(ctx context.Context, eventID primitive.ObjectID) error
}

type RatingAggregatorImpl struct {
	reviewRepo repository.ReviewRepository
	eventRepo  repository.EventRepository
	eventCache cache.RedisEventCacheManager

	// 同一個活動的重算互斥，避免讀聚合/寫聚合交錯造成 lost update
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func NewRatingAggregator(
	reviewRepo repository.ReviewRepository,
	eventRepo repository.EventRepository,
	eventCache cache.RedisEventCacheManager,
) RatingAggregator {
	return &RatingAggregatorImpl{
		reviewRepo: reviewRepo,
		eventRepo:  eventRepo,
		eventCache: eventCache,
		locks:      make(map[primitive.ObjectID]*sync.Mutex),
	}
}

func (a *RatingAggregatorImpl) lockFor(eventID primitive.ObjectID) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[eventID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[eventID] = l
	}
	return l
}

func (a *RatingAggregatorImpl) Recompute(ctx context.Context, eventID primitive.ObjectID) error {
	l := a.lockFor(eventID)
	l.Lock()
	defer l.Unlock()

	stats, err := a.reviewRepo.AggregateByEventID(ctx, eventID)
	if err != nil {
		return err
	}

	if stats.Quantity > 0 {
		err = a.eventRepo.UpdateRating(ctx, eventID, stats.Quantity, roundRating(stats.Average))
	} else {
		// 沒有評論就回到預設值
		err = a.eventRepo.UpdateRating(ctx, eventID, 0, model.DefaultRatingsAverage)
	}
	if err != nil {
		return err
	}

	// 快取失效失敗不算重算失敗，TTL 到了自然一致
	if cacheErr := a.eventCache.Invalidate(ctx, eventID.Hex()); cacheErr != nil {
		logger.WithComponent("aggregator").Warn("invalidate event cache failed",
			zap.String("event_id", eventID.Hex()), zap.Error(cacheErr))
	}

	return nil
}

// roundRating 四捨五入到一位小數
func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
