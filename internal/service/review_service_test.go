package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sam-nazarian/event-booking-practice/internal/model"
	"github.com/sam-nazarian/event-booking-practice/internal/queue"
	queueMocks "github.com/sam-nazarian/event-booking-practice/internal/queue/mocks"
	repoMocks "github.com/sam-nazarian/event-booking-practice/internal/repository/mocks"
	"github.com/sam-nazarian/event-booking-practice/internal/service"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func recomputeFor(eventID primitive.ObjectID) interface{} {
	return mock.MatchedBy(func(job *queue.RecomputeJob) bool {
		return job.EventID == eventID.Hex()
	})
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()
	eventID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	newReview := func() *model.Review {
		return &model.Review{
			Review: "Great event, well organised.",
			Rating: intPtr(5),
			Event:  eventID,
			User:   userID,
		}
	}

	t.Run("Success - creates review and publishes recompute", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		review := newReview()
		created := *review
		created.ID = primitive.NewObjectID()

		repo.On("Create", ctx, review).Return(&created, nil).Once()
		ratingQueue.On("PublishRecompute", ctx, recomputeFor(eventID)).Return(nil).Once()

		result, err := reviewService.Create(ctx, review)

		require.NoError(t, err)
		assert.Equal(t, created.ID, result.ID)
		repo.AssertExpectations(t)
		ratingQueue.AssertExpectations(t)
	})

	t.Run("Success - publish failure does not fail the write", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		review := newReview()
		repo.On("Create", ctx, review).Return(review, nil).Once()
		ratingQueue.On("PublishRecompute", ctx, mock.Anything).Return(errors.New("queue full")).Once()

		result, err := reviewService.Create(ctx, review)

		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("Failed - empty review body", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		review := newReview()
		review.Review = ""

		result, err := reviewService.Create(ctx, review)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Nil(t, result)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Failed - rating out of range", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		review := newReview()
		review.Rating = intPtr(6)

		_, err := reviewService.Create(ctx, review)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		ratingQueue.AssertNotCalled(t, "PublishRecompute", mock.Anything, mock.Anything)
	})

	t.Run("Failed - duplicate review", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		review := newReview()
		repo.On("Create", ctx, review).Return(nil, apperrors.ErrDuplicateReview).Once()

		_, err := reviewService.Create(ctx, review)

		assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)
		ratingQueue.AssertNotCalled(t, "PublishRecompute", mock.Anything, mock.Anything)
	})
}

func TestReviewService_Update(t *testing.T) {
	ctx := context.Background()
	reviewID := primitive.NewObjectID()
	eventID := primitive.NewObjectID()

	existing := &model.Review{
		ID:     reviewID,
		Review: "Decent event.",
		Rating: intPtr(3),
		Event:  eventID,
	}

	t.Run("Success - recompute targets the event captured before update", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		params := model.UpdateReviewParams{Rating: intPtr(5)}
		updated := *existing
		updated.Rating = intPtr(5)

		repo.On("FindByID", ctx, reviewID).Return(existing, nil).Once()
		repo.On("Update", ctx, reviewID, params).Return(&updated, nil).Once()
		ratingQueue.On("PublishRecompute", ctx, recomputeFor(eventID)).Return(nil).Once()

		result, err := reviewService.Update(ctx, reviewID, params)

		require.NoError(t, err)
		assert.Equal(t, 5, *result.Rating)
		repo.AssertExpectations(t)
		ratingQueue.AssertExpectations(t)
	})

	t.Run("Failed - empty params", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		_, err := reviewService.Update(ctx, reviewID, model.UpdateReviewParams{})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - review not found skips recompute", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		repo.On("FindByID", ctx, reviewID).Return(nil, apperrors.ErrReviewNotFound).Once()

		_, err := reviewService.Update(ctx, reviewID, model.UpdateReviewParams{Review: strPtr("edited")})

		assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		ratingQueue.AssertNotCalled(t, "PublishRecompute", mock.Anything, mock.Anything)
	})

	t.Run("Failed - update error skips recompute", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		params := model.UpdateReviewParams{Rating: intPtr(4)}
		repo.On("FindByID", ctx, reviewID).Return(existing, nil).Once()
		repo.On("Update", ctx, reviewID, params).Return(nil, errors.New("db error")).Once()

		_, err := reviewService.Update(ctx, reviewID, params)

		require.Error(t, err)
		ratingQueue.AssertNotCalled(t, "PublishRecompute", mock.Anything, mock.Anything)
	})
}

func TestReviewService_Delete(t *testing.T) {
	ctx := context.Background()
	reviewID := primitive.NewObjectID()
	eventID := primitive.NewObjectID()

	existing := &model.Review{
		ID:     reviewID,
		Review: "Changed my mind.",
		Rating: intPtr(2),
		Event:  eventID,
	}

	t.Run("Success - recompute targets the event captured before delete", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		repo.On("FindByID", ctx, reviewID).Return(existing, nil).Once()
		repo.On("Delete", ctx, reviewID).Return(nil).Once()
		ratingQueue.On("PublishRecompute", ctx, recomputeFor(eventID)).Return(nil).Once()

		err := reviewService.Delete(ctx, reviewID)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		ratingQueue.AssertExpectations(t)
	})

	t.Run("Failed - review not found skips delete and recompute", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		repo.On("FindByID", ctx, reviewID).Return(nil, apperrors.ErrReviewNotFound).Once()

		err := reviewService.Delete(ctx, reviewID)

		assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		ratingQueue.AssertNotCalled(t, "PublishRecompute", mock.Anything, mock.Anything)
	})

	t.Run("Failed - delete error skips recompute", func(t *testing.T) {
		repo := repoMocks.NewMockReviewRepository()
		ratingQueue := queueMocks.NewMockRatingQueue()
		reviewService := service.NewReviewService(repo, ratingQueue)

		repo.On("FindByID", ctx, reviewID).Return(existing, nil).Once()
		repo.On("Delete", ctx, reviewID).Return(errors.New("db error")).Once()

		err := reviewService.Delete(ctx, reviewID)

		require.Error(t, err)
		ratingQueue.AssertNotCalled(t, "PublishRecompute", mock.Anything, mock.Anything)
	})
}
