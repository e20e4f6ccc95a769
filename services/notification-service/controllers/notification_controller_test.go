package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/notification-service/models"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]models.NotificationLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

func setupRouter(svc NotificationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/notifications/logs", NewNotificationController(svc).GetNotificationLogs)
	return r
}

func TestGetNotificationLogs(t *testing.T) {
	svc := new(MockNotificationService)
	want := models.NotificationFilter{UserID: "u1", Status: models.StatusFailed, Page: 2, Limit: 5}
	svc.On("GetLogs", mock.Anything, want).
		Return([]models.NotificationLog{{ID: 3, EventType: "payment_failed", Status: models.StatusFailed}}, int64(6), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications/logs?user_id=u1&status=failed&page=2&limit=5", nil)
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Logs []models.NotificationLog `json:"logs"`
		Meta map[string]float64       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Logs, 1)
	assert.Equal(t, "payment_failed", body.Logs[0].EventType)
	assert.Equal(t, float64(6), body.Meta["total"])
	assert.Equal(t, float64(2), body.Meta["totalPages"])
	svc.AssertExpectations(t)
}

func TestGetNotificationLogs_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad page", "?page=0"},
		{"bad limit", "?limit=x"},
		{"bad status", "?status=queued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockNotificationService)
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notifications/logs"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "GetLogs", mock.Anything, mock.Anything)
		})
	}
}

func TestGetNotificationLogs_ServiceError(t *testing.T) {
	svc := new(MockNotificationService)
	svc.On("GetLogs", mock.Anything, mock.Anything).Return(nil, int64(0), apperrors.Internal(errors.New("db down")))

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notifications/logs", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
