package service

import (
	"context"

	"github.com/sam-nazarian/event-booking-practice/internal/model"
	"github.com/sam-nazarian/event-booking-practice/internal/queue"
	"github.com/sam-nazarian/event-booking-practice/internal/repository"
	"github.com/sam-nazarian/event-booking-practice/pkg/logger"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReviewService 評論的每次成功寫入都會觸發所屬活動的評分重算。
// 更新與刪除要在異動「之前」先抓目標評論，留住活動 id，
// 異動落地後才發重算任務；重算永遠不會跑在異動提交之前
type ReviewService interface {
	Create(ctx context.Context, review *model.Review) (*model.Review, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error)
	ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, params model.UpdateReviewParams) (*model.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ReviewServiceImpl struct {
	repo        repository.ReviewRepository
	ratingQueue queue.RatingQueue
}

func NewReviewService(repo repository.ReviewRepository, ratingQueue queue.RatingQueue) ReviewService {
	return &ReviewServiceImpl{
		repo:        repo,
		ratingQueue: ratingQueue,
	}
}

func (s *ReviewServiceImpl) Create(ctx context.Context, review *model.Review) (*model.Review, error) {
	if review.Review == "" || !review.HasValidRating() {
		return nil, apperrors.ErrInvalidInput
	}

	created, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, err
	}

	s.publishRecompute(ctx, created.Event)
	return created, nil
}

func (s *ReviewServiceImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ReviewServiceImpl) ListByEventID(ctx context.Context, eventID primitive.ObjectID) ([]*model.Review, error) {
	return s.repo.ListByEventID(ctx, eventID)
}

func (s *ReviewServiceImpl) Update(ctx context.Context, id primitive.ObjectID, params model.UpdateReviewParams) (*model.Review, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	if params.Rating != nil && (*params.Rating < model.MinRating || *params.Rating > model.MaxRating) {
		return nil, apperrors.ErrInvalidInput
	}

	// 先抓一次留住活動 id；更新後的文件可能已經換了欄位值
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.publishRecompute(ctx, existing.Event)
	return updated, nil
}

func (s *ReviewServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	// 刪掉之後就查不到了，活動 id 必須在刪除前抓
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishRecompute(ctx, existing.Event)
	return nil
}

// publishRecompute 發送失敗不影響已提交的評論異動，聚合等下一次重算補上
func (s *ReviewServiceImpl) publishRecompute(ctx context.Context, eventID primitive.ObjectID) {
	job := &queue.RecomputeJob{EventID: eventID.Hex()}
	if err := s.ratingQueue.PublishRecompute(ctx, job); err != nil {
		logger.WithComponent("service").Warn("publish recompute failed",
			zap.String("event_id", eventID.Hex()), zap.Error(err))
	}
}
