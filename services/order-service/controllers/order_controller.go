package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/common/auth"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/order-service/models"
	"github.com/yashrajoria/shopswift/services/order-service/services"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, in services.CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, caller auth.Identity, id string) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID string, page, limit int) (*services.OrderList, error)
	CancelOrder(ctx context.Context, caller auth.Identity, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Order, error)
	MarkPaid(ctx context.Context, id, paymentID string) (*models.Order, error)
}

type OrderController struct {
	orderService OrderService
}

func NewOrderController(orderService OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type updateStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
}

type markPaidRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
}

// CreateOrder handles checkout
func (oc *OrderController) CreateOrder(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	order, err := oc.orderService.CreateOrder(c.Request.Context(), caller.ID, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"orderId": order.ID,
		"order":   order,
	})
}

// GetMyOrders returns the caller's orders, newest first
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	page, limit, err := validation.ParsePagination(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	result, err := oc.orderService.ListMyOrders(c.Request.Context(), caller.ID, page, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	order, err := oc.orderService.GetOrder(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	order, err := oc.orderService.CancelOrder(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

// UpdateStatus is admin only
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	order, err := oc.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

// MarkPaid is called by the payment service once a payment is verified.
func (oc *OrderController) MarkPaid(c *gin.Context) {
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	order, err := oc.orderService.MarkPaid(c.Request.Context(), c.Param("id"), req.PaymentID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order marked as paid", "order": order})
}
