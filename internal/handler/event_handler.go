package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sam-nazarian/event-booking-practice/internal/media"
	"github.com/sam-nazarian/event-booking-practice/internal/model"
	"github.com/sam-nazarian/event-booking-practice/internal/service"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"
	"github.com/sam-nazarian/event-booking-practice/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type EventHandler struct {
	service service.EventService
	uploads media.UploadPipeline
}

func NewEventHandler(service service.EventService, uploads media.UploadPipeline) *EventHandler {
	return &EventHandler{service: service, uploads: uploads}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.POST("events", h.Create)
		router.GET("events/:id", h.GetByID)
		router.PATCH("events/:id", h.Update)
		router.DELETE("events/:id", h.Delete)
		router.GET("events/events-within/:distance/center/:latlng/unit/:unit", h.FindWithin)
		router.GET("events/distances/:latlng/unit/:unit", h.Distances)
	}
}

// CreateEventRequest 建立活動請求。
// multipart 時 location 是 JSON 字串欄位，JSON body 時是巢狀物件
type CreateEventRequest struct {
	Name         string          `form:"name" json:"name" binding:"required"`
	Price        float64         `form:"price" json:"price" binding:"required"`
	Summary      string          `form:"summary" json:"summary" binding:"required"`
	Description  string          `form:"description" json:"description"`
	StartDate    time.Time       `form:"startDate" json:"startDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Location     *model.Location `form:"-" json:"location"`
	LocationJSON string          `form:"location" json:"-"`
	Organiser    string          `form:"organiser" json:"organiser"`
}

// UpdateEventRequest 更新活動請求
type UpdateEventRequest struct {
	Name         *string         `form:"name" json:"name"`
	Price        *float64        `form:"price" json:"price"`
	Summary      *string         `form:"summary" json:"summary"`
	Description  *string         `form:"description" json:"description"`
	StartDate    *time.Time      `form:"startDate" json:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	Location     *model.Location `form:"-" json:"location"`
	LocationJSON string          `form:"location" json:"-"`
	Organiser    *string         `form:"organiser" json:"organiser"`
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}
	event, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := Bind(c, &req); err != nil {
		return
	}

	location, ok := h.resolveLocation(c, req.Location, req.LocationJSON)
	if !ok {
		return
	}

	event := &model.Event{
		Name:        req.Name,
		Price:       req.Price,
		Summary:     req.Summary,
		Description: req.Description,
		StartDate:   req.StartDate,
		Location:    *location,
	}

	if req.Organiser != "" {
		organiserID, err := primitive.ObjectIDFromHex(req.Organiser)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organiser id"})
			return
		}
		event.Organiser = &organiserID
	}

	// 附件要先全部編碼完成，record 才能往下寫
	result, ok := h.processUploads(c, req.Organiser)
	if !ok {
		return
	}
	if result != nil {
		event.ImageCover = result.ImageCover
		event.Images = result.Images
	}

	created, err := h.service.Create(c, event)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := ParseObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := Bind(c, &req); err != nil {
		return
	}

	params := model.UpdateEventParams{
		Name:        req.Name,
		Price:       req.Price,
		Summary:     req.Summary,
		Description: req.Description,
		StartDate:   req.StartDate,
		Location:    req.Location,
	}

	if req.LocationJSON != "" {
		var location model.Location
		if err := json.Unmarshal([]byte(req.LocationJSON), &location); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location"})
			return
		}
		params.Location = &location
	}

	if req.Organiser != nil {
		organiserID, err := primitive.ObjectIDFromHex(*req.Organiser)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organiser id"})
			return
		}
		params.Organiser = &organiserID
	}

	result, ok := h.processUploads(c, "")
	if !ok {
		return
	}
	if result != nil {
		if result.ImageCover != "" {
			params.ImageCover = &result.ImageCover
		}
		if len(result.Images) > 0 {
			params.Images = result.Images
		}
	}

	updated, err := h.service.Update(c, id, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
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

func (h *EventHandler) FindWithin(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid distance"})
		return
	}

	lat, lng, ok := parseLatLng(c)
	if !ok {
		return
	}

	events, err := h.service.FindWithin(c, distance, lat, lng, c.Param("unit"))
	if err != nil {
		h.handleError(c, err, "FindWithin")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Distances(c *gin.Context) {
	lat, lng, ok := parseLatLng(c)
	if !ok {
		return
	}

	distances, err := h.service.Distances(c, lat, lng, c.Param("unit"))
	if err != nil {
		h.handleError(c, err, "Distances")
		return
	}
	c.JSON(http.StatusOK, distances)
}

// parseLatLng 解析 :latlng 路徑段；缺經緯度直接 400，不帶著缺值繼續往下跑
func parseLatLng(c *gin.Context) (lat, lng float64, ok bool) {
	parts := strings.Split(c.Param("latlng"), ",")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide latitude and longitude in the format lat,lng."})
		return 0, 0, false
	}

	lat, latErr := strconv.ParseFloat(parts[0], 64)
	lng, lngErr := strconv.ParseFloat(parts[1], 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide latitude and longitude in the format lat,lng."})
		return 0, 0, false
	}
	return lat, lng, true
}

// resolveLocation multipart 的 location 是 JSON 字串，JSON body 直接是物件
func (h *EventHandler) resolveLocation(c *gin.Context, location *model.Location, locationJSON string) (*model.Location, bool) {
	if location == nil && locationJSON != "" {
		var parsed model.Location
		if err := json.Unmarshal([]byte(locationJSON), &parsed); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location"})
			return nil, false
		}
		location = &parsed
	}
	if location == nil || !location.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An event must have a Point location with coordinates and address"})
		return nil, false
	}
	return location, true
}

// processUploads 有附件就走上傳管線，沒附件時是 no-op。
// 檔名主體優先用路徑上的活動 id，沒有就退回目前使用者
func (h *EventHandler) processUploads(c *gin.Context, fallbackSubject string) (*media.Result, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return nil, false
	}

	subject := c.Param("id")
	if subject == "" {
		subject = c.GetString("userID")
	}
	if subject == "" {
		subject = fallbackSubject
	}

	result, err := h.uploads.Process(c.Request.Context(), form, subject)
	if err != nil {
		h.handleError(c, err, "processUploads")
		return nil, false
	}
	return result, true
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrInvalidMediaType):
		log.Warn("Not an image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not an image! Please upload only images."})
	case errors.Is(err, apperrors.ErrDuplicateEventName):
		log.Warn("Duplicate event name")
		c.JSON(http.StatusConflict, gin.H{"error": "Event name already exists"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
