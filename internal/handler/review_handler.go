package handler

import (
	"errors"
	"net/http"

	"github.com/sam-nazarian/event-booking-practice/internal/model"
	"github.com/sam-nazarian/event-booking-practice/internal/service"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"
	"github.com/sam-nazarian/event-booking-practice/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service service.ReviewService
}

func NewReviewHandler(service service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("reviews", h.Create)
		router.GET("reviews/:id", h.GetByID)
		router.PATCH("reviews/:id", h.Update)
		router.DELETE("reviews/:id", h.Delete)
		// 活動的評論是讀取時以外鍵查出來的
		router.GET("events/:id/reviews", h.ListByEvent)
	}
}

// CreateReviewRequest 建立評論請求，rating 可省略
type CreateReviewRequest struct {
	Review string `json:"review" binding:"required"`
	Rating *int   `json:"rating"`
	Event  string `json:"event" binding:"required"`
	User   string `json:"user" binding:"required"`
}

// UpdateReviewRequest 更新評論請求
type UpdateReviewRequest struct {
	Review *string `json:"review"`
	Rating *int    `json:"rating"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	eventID, err := primitive.ObjectIDFromHex(req.Event)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.User)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	review := &model.Review{
		Review: req.Review,
		Rating: req.Rating,
		Event:  eventID,
		User:   userID,
	}

	created, err := h.service.Create(c, review)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ReviewHandler) GetByID(c *gin.Context) {
	id, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}
	review, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) ListByEvent(c *gin.Context) {
	eventID, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.service.ListByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateReviewParams{
		Review: req.Review,
		Rating: req.Rating,
	}

	updated, err := h.service.Update(c, id, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c, id); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrReviewNotFound):
		log.Warn("Review not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	case errors.Is(err, apperrors.ErrDuplicateReview):
		log.Warn("Duplicate review")
		c.JSON(http.StatusConflict, gin.H{"error": "User already reviewed this event"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
