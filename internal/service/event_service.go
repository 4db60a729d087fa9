package service

import (
	"context"

	"github.com/sam-nazarian/event-booking-practice/internal/cache"
	"github.com/sam-nazarian/event-booking-practice/internal/model"
	"github.com/sam-nazarian/event-booking-practice/internal/repository"
	"github.com/sam-nazarian/event-booking-practice/pkg/logger"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// 地球半徑，換算球面圓半徑成弧度用
	EarthRadiusMiles = 3963.2
	EarthRadiusKm    = 6378.1

	// geoNear 回傳公尺，乘上倍率轉成目標單位
	MetersToMiles = 0.000621371
	MetersToKm    = 0.001
)

type EventService interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	// GetByID 回傳展開後的活動：organiser 文件加上以查詢現算的 reviews
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.PopulatedEvent, error)
	Update(ctx context.Context, id primitive.ObjectID, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindWithin 回傳落在以 (lat, lng) 為圓心、distance 為半徑的球面圓內的活動
	FindWithin(ctx context.Context, distance, lat, lng float64, unit string) ([]*model.Event, error)
	// Distances 回傳所有活動與 (lat, lng) 的大圓距離，依距離遞增
	Distances(ctx context.Context, lat, lng float64, unit string) ([]*model.EventDistance, error)
}

type EventServiceImpl struct {
	repo       repository.EventRepository
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	eventCache cache.RedisEventCacheManager
}

func NewEventService(
	repo repository.EventRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	eventCache cache.RedisEventCacheManager,
) EventService {
	return &EventServiceImpl{
		repo:       repo,
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		eventCache: eventCache,
	}
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if !model.ValidateEventName(event.Name) {
		return nil, apperrors.ErrInvalidInput
	}
	if !event.Location.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	// slug 一律由 name 推導，評分聚合從預設值起算
	event.Slug = model.SlugFromName(event.Name)
	event.RatingsAverage = model.DefaultRatingsAverage
	event.RatingsQuantity = 0

	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*model.PopulatedEvent, error) {
	cached, err := s.eventCache.GetEvent(ctx, id.Hex())
	if err == nil {
		return cached, nil
	}
	if err != apperrors.ErrCacheMiss {
		logger.WithComponent("service").Warn("event cache read failed", zap.Error(err))
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, err
	}

	var organiser *model.User
	if event.Organiser != nil {
		organiser, err = s.userRepo.FindByID(ctx, *event.Organiser)
		if err != nil && err != apperrors.ErrUserNotFound {
			return nil, err
		}
	}

	populated := &model.PopulatedEvent{
		Event:     *event,
		Organiser: organiser,
		Reviews:   reviews,
	}

	if cacheErr := s.eventCache.SetEvent(ctx, populated); cacheErr != nil {
		logger.WithComponent("service").Warn("event cache write failed", zap.Error(cacheErr))
	}

	return populated, nil
}

func (s *EventServiceImpl) Update(ctx context.Context, id primitive.ObjectID, params model.UpdateEventParams) (*model.Event, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}

	if params.Name != nil {
		if !model.ValidateEventName(*params.Name) {
			return nil, apperrors.ErrInvalidInput
		}
		// 改名時 slug 跟著重推
		newSlug := model.SlugFromName(*params.Name)
		params.Slug = &newSlug
	}
	if params.Location != nil && !params.Location.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

func (s *EventServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *EventServiceImpl) FindWithin(ctx context.Context, distance, lat, lng float64, unit string) ([]*model.Event, error) {
	radius := distance / EarthRadiusKm
	if unit == "mi" {
		radius = distance / EarthRadiusMiles
	}
	return s.repo.FindWithinSphere(ctx, lng, lat, radius)
}

func (s *EventServiceImpl) Distances(ctx context.Context, lat, lng float64, unit string) ([]*model.EventDistance, error) {
	multiplier := MetersToKm
	if unit == "mi" {
		multiplier = MetersToMiles
	}
	return s.repo.DistancesFrom(ctx, lng, lat, multiplier)
}

func (s *EventServiceImpl) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := s.eventCache.Invalidate(ctx, id.Hex()); err != nil {
		logger.WithComponent("service").Warn("event cache invalidate failed",
			zap.String("event_id", id.Hex()), zap.Error(err))
	}
}
