package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/notification-service/models"
)

var ErrInvalidStatus = apperrors.BadRequest("Invalid status filter")

type NotificationService interface {
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type NotificationController struct {
	service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{service: service}
}

// GetNotificationLogs lists delivery records, newest first.
func (nc *NotificationController) GetNotificationLogs(c *gin.Context) {
	page, limit, err := validation.ParsePagination(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	filter := models.NotificationFilter{
		UserID:    c.Query("user_id"),
		EventType: c.Query("event_type"),
		Status:    c.Query("status"),
		Page:      page,
		Limit:     limit,
	}
	switch filter.Status {
	case "", models.StatusSent, models.StatusFailed, models.StatusSkipped:
	default:
		apperrors.Respond(c, ErrInvalidStatus)
		return
	}

	logs, total, err := nc.service.GetLogs(c.Request.Context(), filter)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs": logs,
		"meta": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": validation.TotalPages(total, limit),
		},
	})
}
