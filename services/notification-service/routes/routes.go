package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/notification-service/controllers"
)

func RegisterNotificationRoutes(r *gin.Engine, nc *controllers.NotificationController, verifier middleware.TokenVerifier, denylist auth.Denylist) {
	admin := r.Group("/api/notifications", middleware.Authenticate(verifier, denylist, auth.RoleAdmin))
	admin.GET("/logs", nc.GetNotificationLogs)
}
