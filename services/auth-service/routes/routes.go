package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/auth-service/controllers"
	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/middleware"
)

func RegisterUserRoutes(r *gin.Engine, ac *controllers.AuthController, verifier middleware.TokenVerifier, denylist auth.Denylist, internalKey string) {
	internal := r.Group("/api/auth/internal", middleware.InternalAPIKey(internalKey))
	internal.GET("/users/:id", ac.GetUserInternal)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", ac.Register)
		authGroup.POST("/login", ac.Login)
		authGroup.POST("/logout", ac.Logout)
		authGroup.GET("/current", middleware.Authenticate(verifier, denylist), ac.Current)
	}

	addresses := r.Group("/api/auth/addresses", middleware.Authenticate(verifier, denylist))
	{
		addresses.GET("", ac.GetAddresses)
		addresses.POST("", ac.CreateAddress)
		addresses.PUT("/:id", ac.UpdateAddress)
		addresses.DELETE("/:id", ac.DeleteAddress)
	}
}
