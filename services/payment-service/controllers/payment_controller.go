package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/common/auth"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/payment-service/models"
	"github.com/yashrajoria/shopswift/services/payment-service/services"
)

const maxWebhookBytes = 64 << 10

type PaymentService interface {
	CreatePayment(ctx context.Context, caller auth.Identity, token, orderID string) (*services.CreatePaymentResult, error)
	VerifyPayment(ctx context.Context, in services.VerifyInput) (*models.Payment, error)
	GetPaymentsForOrder(ctx context.Context, caller auth.Identity, orderID string) ([]models.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type PaymentController struct {
	service PaymentService
}

func NewPaymentController(service PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

// CreatePayment opens a gateway order for :orderId
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	result, err := pc.service.CreatePayment(c.Request.Context(), caller, middleware.CurrentToken(c), c.Param("orderId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Payment initiated",
		"keyId":        result.KeyID,
		"orderId":      result.OrderID,
		"amount":       result.Amount,
		"currency":     result.Currency,
		"clientSecret": result.ClientSecret,
		"payment":      result.Payment,
	})
}

func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req services.VerifyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	payment, err := pc.service.VerifyPayment(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment verified successfully", "payment": payment})
}

func (pc *PaymentController) GetPaymentsForOrder(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	payments, err := pc.service.GetPaymentsForOrder(c.Request.Context(), caller, c.Param("orderId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// StripeWebhook receives signed Stripe events; it carries no session.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		apperrors.Respond(c, apperrors.BadRequest("Invalid webhook payload"))
		return
	}

	if err := pc.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
