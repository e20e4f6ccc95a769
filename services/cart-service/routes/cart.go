package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/cart-service/controllers"
	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/middleware"
)

func RegisterCartRoutes(r *gin.Engine, controller *controllers.CartController, verifier middleware.TokenVerifier, denylist auth.Denylist) {
	api := r.Group("/api/cart")
	api.Use(middleware.Authenticate(verifier, denylist))
	{
		api.GET("", controller.GetCart)
		api.POST("/add", controller.AddItem)
		api.PUT("/update", controller.UpdateItem)
		api.DELETE("/remove/:productId", controller.RemoveItem)
		api.DELETE("/clear", controller.ClearCart)
	}
}
