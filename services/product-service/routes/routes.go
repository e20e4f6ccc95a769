package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/product-service/controllers"
)

func RegisterRoutes(r *gin.Engine, pc *controllers.ProductController, verifier middleware.TokenVerifier, denylist auth.Denylist) {
	products := r.Group("/api/products")
	{
		products.GET("/list", pc.GetProducts)
		products.GET("/:id", pc.GetProductByID)

		products.POST("/add", middleware.Authenticate(verifier, denylist, auth.RoleSeller, auth.RoleAdmin), pc.CreateProduct)
		products.PUT("/:id", middleware.Authenticate(verifier, denylist), pc.UpdateProduct)
		products.DELETE("/:id", middleware.Authenticate(verifier, denylist), pc.DeleteProduct)
	}
}
