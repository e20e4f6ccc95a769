package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/order-service/controllers"
)

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, verifier middleware.TokenVerifier, denylist auth.Denylist, internalKey string) {
	internal := r.Group("/api/orders/internal", middleware.InternalAPIKey(internalKey))
	internal.PUT("/:id/payment", oc.MarkPaid)

	orders := r.Group("/api/orders", middleware.Authenticate(verifier, denylist))
	{
		orders.POST("/create", oc.CreateOrder)
		orders.GET("/my-orders", oc.GetMyOrders)
		orders.GET("/:id", oc.GetOrder)
		orders.PUT("/:id/cancel", oc.CancelOrder)
		orders.PUT("/:id/status", middleware.RequireRoles(auth.RoleAdmin), oc.UpdateStatus)
	}
}
