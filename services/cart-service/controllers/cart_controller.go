package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/cart-service/models"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/common/validation"
)

// CartService is implemented by services.CartService.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartController struct {
	service CartService
}

func NewCartController(service CartService) *CartController {
	return &CartController{service: service}
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1,max=1000"`
}

type updateItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,max=1000"`
}

// GetCart returns the caller's cart
func (cc *CartController) GetCart(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	cart, err := cc.service.GetCart(c.Request.Context(), id.ID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds a product or increments its quantity
func (cc *CartController) AddItem(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	cart, err := cc.service.AddItem(c.Request.Context(), id.ID, req.ProductID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "cart": cart})
}

// UpdateItem sets a line's quantity; zero removes it
func (cc *CartController) UpdateItem(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	cart, err := cc.service.SetQuantity(c.Request.Context(), id.ID, req.ProductID, *req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "cart": cart})
}

// RemoveItem removes a line by product id
func (cc *CartController) RemoveItem(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	cart, err := cc.service.RemoveItem(c.Request.Context(), id.ID, c.Param("productId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "cart": cart})
}

// ClearCart deletes the whole cart
func (cc *CartController) ClearCart(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	if err := cc.service.ClearCart(c.Request.Context(), id.ID); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
