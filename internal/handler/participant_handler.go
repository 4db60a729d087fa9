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

type ParticipantHandler struct {
	service service.ParticipantService
}

func NewParticipantHandler(service service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

func (h *ParticipantHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("participants", h.Create)
		router.GET("participants/:id", h.GetByID)
		router.PATCH("participants/:id", h.Update)
		router.DELETE("participants/:id", h.Delete)
		router.GET("events/:id/participants", h.ListByEvent)
	}
}

// CreateParticipantRequest attending 是必填布林，用指標分辨「沒給」和 false
type CreateParticipantRequest struct {
	Attending *bool  `json:"attending" binding:"required"`
	Event     string `json:"event" binding:"required"`
	User      string `json:"user" binding:"required"`
}

type UpdateParticipantRequest struct {
	Attending *bool `json:"attending" binding:"required"`
}

func (h *ParticipantHandler) Create(c *gin.Context) {
	var req CreateParticipantRequest
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

	participant := &model.Participant{
		Attending: req.Attending,
		Event:     eventID,
		User:      userID,
	}

	created, err := h.service.Create(c, participant)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ParticipantHandler) GetByID(c *gin.Context) {
	id, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}
	participant, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, participant)
}

func (h *ParticipantHandler) ListByEvent(c *gin.Context) {
	eventID, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}
	participants, err := h.service.ListByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, participants)
}

func (h *ParticipantHandler) Update(c *gin.Context) {
	id, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateParticipantRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	updated, err := h.service.Update(c, id, model.UpdateParticipantParams{Attending: req.Attending})
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ParticipantHandler) Delete(c *gin.Context) {
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

func (h *ParticipantHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrParticipantNotFound):
		log.Warn("Participant not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
	case errors.Is(err, apperrors.ErrDuplicateParticipant):
		log.Warn("Duplicate participant")
		c.JSON(http.StatusConflict, gin.H{"error": "User already responded to this event"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
