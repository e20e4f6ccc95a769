package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/common/auth"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/product-service/models"
	"github.com/yashrajoria/shopswift/services/product-service/services"
)

type ProductService interface {
	CreateProduct(ctx context.Context, seller auth.Identity, in services.CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, params services.ListProductsParams) (*services.ProductList, error)
	UpdateProduct(ctx context.Context, caller auth.Identity, id string, u models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, caller auth.Identity, id string) error
}

type ProductController struct {
	service        ProductService
	maxUploadBytes int64
}

func NewProductController(service ProductService, maxUploadBytes int64) *ProductController {
	return &ProductController{service: service, maxUploadBytes: maxUploadBytes}
}

// CreateProduct handles the multipart create form
func (pc *ProductController) CreateProduct(c *gin.Context) {
	seller, _ := middleware.CurrentIdentity(c)

	in, err := parseCreateProduct(c, pc.maxUploadBytes)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	product, err := pc.service.CreateProduct(c.Request.Context(), seller, in)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

// GetProducts lists products with filters and pagination
func (pc *ProductController) GetProducts(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	list, err := pc.service.ListProducts(c.Request.Context(), params)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetProductByID returns the bare product document
func (pc *ProductController) GetProductByID(c *gin.Context) {
	product, err := pc.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	var u models.ProductUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	product, err := pc.service.UpdateProduct(c.Request.Context(), caller, c.Param("id"), u)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	if err := pc.service.DeleteProduct(c.Request.Context(), caller, c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
