package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sam-nazarian/event-booking-practice/internal/handler"
	"github.com/sam-nazarian/event-booking-practice/internal/media"
	"github.com/sam-nazarian/event-booking-practice/internal/model"
	serviceMocks "github.com/sam-nazarian/event-booking-practice/internal/service/mocks"
	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUploadPipeline 回傳預先設定的結果，順便記下收到的檔名主體
type fakeUploadPipeline struct {
	result  *media.Result
	err     error
	subject string
	called  bool
}

func (f *fakeUploadPipeline) Process(ctx context.Context, form *multipart.Form, subjectID string) (*media.Result, error) {
	f.called = true
	f.subject = subjectID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func setupEventRouter(svc *serviceMocks.MockEventService, uploads media.UploadPipeline) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewEventHandler(svc, uploads).RegisterRoutes(router)
	return router
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func eventBody() gin.H {
	return gin.H{
		"name":      "Summer Music Festival",
		"price":     49.99,
		"summary":   "Three stages of live music.",
		"startDate": "2026-07-01T18:00:00Z",
		"location": gin.H{
			"type":        "Point",
			"coordinates": []float64{-118.113491, 34.111745},
			"address":     "Los Angeles, CA",
		},
	}
}

func TestEventHandler_Create(t *testing.T) {
	t.Run("Success - JSON body", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		created := &model.Event{ID: primitive.NewObjectID(), Name: "Summer Music Festival"}
		svc.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Event) bool {
			return e.Name == "Summer Music Festival" && e.Location.IsValid()
		})).Return(created, nil).Once()

		w := performJSON(t, router, http.MethodPost, "/api/v1/events", eventBody())

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Failed - missing required fields", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		w := performJSON(t, router, http.MethodPost, "/api/v1/events", gin.H{"name": "Summer Music Festival"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Failed - missing location", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		body := eventBody()
		delete(body, "location")
		w := performJSON(t, router, http.MethodPost, "/api/v1/events", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Point location")
	})

	t.Run("Failed - duplicate name", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.ErrDuplicateEventName).Once()

		w := performJSON(t, router, http.MethodPost, "/api/v1/events", eventBody())

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestEventHandler_CreateMultipart(t *testing.T) {
	buildMultipart := func(t *testing.T, withFile bool) (*bytes.Buffer, string) {
		t.Helper()

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("name", "Summer Music Festival"))
		require.NoError(t, w.WriteField("price", "49.99"))
		require.NoError(t, w.WriteField("summary", "Three stages of live music."))
		require.NoError(t, w.WriteField("startDate", "2026-07-01T18:00:00Z"))
		require.NoError(t, w.WriteField("location", `{"type":"Point","coordinates":[-118.113491,34.111745],"address":"Los Angeles, CA"}`))
		require.NoError(t, w.WriteField("organiser", "5c8a1d5b0190b214360dc057"))
		if withFile {
			part, err := w.CreateFormFile(media.FieldImageCover, "cover.jpeg")
			require.NoError(t, err)
			_, err = part.Write([]byte("file-bytes"))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())
		return &buf, w.FormDataContentType()
	}

	t.Run("Success - attachments land on the created event", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		uploads := &fakeUploadPipeline{result: &media.Result{ImageCover: "event-x-1-cover.jpeg"}}
		router := setupEventRouter(svc, uploads)

		created := &model.Event{ID: primitive.NewObjectID(), Name: "Summer Music Festival"}
		svc.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Event) bool {
			return e.ImageCover == "event-x-1-cover.jpeg"
		})).Return(created, nil).Once()

		body, contentType := buildMultipart(t, true)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, uploads.called)
		// 建立時還沒有活動 id，檔名主體退回 organiser
		assert.Equal(t, "5c8a1d5b0190b214360dc057", uploads.subject)
		svc.AssertExpectations(t)
	})

	t.Run("Failed - pipeline rejects non-image", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		uploads := &fakeUploadPipeline{err: apperrors.ErrInvalidMediaType}
		router := setupEventRouter(svc, uploads)

		body, contentType := buildMultipart(t, true)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Not an image! Please upload only images.")
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestEventHandler_GetByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		id := primitive.NewObjectID()
		populated := &model.PopulatedEvent{Event: model.Event{ID: id, Name: "Summer Music Festival"}}
		svc.On("GetByID", mock.Anything, id).Return(populated, nil).Once()

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/"+id.Hex(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Summer Music Festival")
	})

	t.Run("Failed - malformed id", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/not-an-id", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		id := primitive.NewObjectID()
		svc.On("GetByID", mock.Anything, id).Return(nil, apperrors.ErrEventNotFound).Once()

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/"+id.Hex(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEventHandler_Update(t *testing.T) {
	t.Run("Success - JSON patch", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		id := primitive.NewObjectID()
		updated := &model.Event{ID: id, Name: "Winter Jazz Evenings"}
		svc.On("Update", mock.Anything, id, mock.MatchedBy(func(p model.UpdateEventParams) bool {
			return p.Name != nil && *p.Name == "Winter Jazz Evenings"
		})).Return(updated, nil).Once()

		w := performJSON(t, router, http.MethodPatch, "/api/v1/events/"+id.Hex(), gin.H{"name": "Winter Jazz Evenings"})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Success - multipart patch names files after the event", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		uploads := &fakeUploadPipeline{result: &media.Result{Images: []string{"a.jpeg", "b.jpeg"}}}
		router := setupEventRouter(svc, uploads)

		id := primitive.NewObjectID()
		svc.On("Update", mock.Anything, id, mock.MatchedBy(func(p model.UpdateEventParams) bool {
			return len(p.Images) == 2
		})).Return(&model.Event{ID: id}, nil).Once()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(media.FieldImages, "a.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/events/"+id.Hex(), &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.Hex(), uploads.subject)
	})

	t.Run("Failed - empty body", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		id := primitive.NewObjectID()
		svc.On("Update", mock.Anything, id, mock.Anything).Return(nil, apperrors.ErrInvalidInput).Once()

		w := performJSON(t, router, http.MethodPatch, "/api/v1/events/"+id.Hex(), gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEventHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		id := primitive.NewObjectID()
		svc.On("Delete", mock.Anything, id).Return(nil).Once()

		w := performJSON(t, router, http.MethodDelete, "/api/v1/events/"+id.Hex(), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		id := primitive.NewObjectID()
		svc.On("Delete", mock.Anything, id).Return(apperrors.ErrEventNotFound).Once()

		w := performJSON(t, router, http.MethodDelete, "/api/v1/events/"+id.Hex(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEventHandler_Geospatial(t *testing.T) {
	t.Run("Success - events within", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		events := []*model.Event{{Name: "Summer Music Festival"}}
		svc.On("FindWithin", mock.Anything, 200.0, 34.111745, -118.113491, "mi").Return(events, nil).Once()

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/events-within/200/center/34.111745,-118.113491/unit/mi", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Failed - latlng without longitude", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/events-within/200/center/34.111745/unit/mi", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please provide latitude and longitude in the format lat,lng.")
		svc.AssertNotCalled(t, "FindWithin", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - distance is not a number", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/events-within/far/center/34.1,-118.1/unit/mi", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Success - distances", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		distances := []*model.EventDistance{{Name: "Summer Music Festival", Distance: 12.4}}
		svc.On("Distances", mock.Anything, 34.111745, -118.113491, "km").Return(distances, nil).Once()

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/distances/34.111745,-118.113491/unit/km", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Failed - distances with empty latitude", func(t *testing.T) {
		svc := serviceMocks.NewMockEventService()
		router := setupEventRouter(svc, &fakeUploadPipeline{})

		w := performJSON(t, router, http.MethodGet, "/api/v1/events/distances/,-118.113491/unit/km", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Distances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
