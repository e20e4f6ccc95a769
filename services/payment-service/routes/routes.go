package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/payment-service/controllers"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, verifier middleware.TokenVerifier, denylist auth.Denylist) {
	// Gateway callbacks carry no session; the signature is checked instead.
	r.POST("/api/payments/webhook", pc.StripeWebhook)
	r.POST("/api/payments/verify", pc.VerifyPayment)

	payments := r.Group("/api/payments", middleware.Authenticate(verifier, denylist))
	{
		payments.POST("/create/:orderId", pc.CreatePayment)
		payments.GET("/order/:orderId", pc.GetPaymentsForOrder)
	}
}
