package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/product-service/models"
	"github.com/yashrajoria/shopswift/services/product-service/services"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, seller auth.Identity, in services.CreateProductInput) (*models.Product, error) {
	args := m.Called(ctx, seller, in)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, params services.ListProductsParams) (*services.ProductList, error) {
	args := m.Called(ctx, params)
	l, _ := args.Get(0).(*services.ProductList)
	return l, args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, caller auth.Identity, id string, u models.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, caller, id, u)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, caller auth.Identity, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

var testSeller = auth.Identity{ID: "seller-1", Role: auth.RoleSeller}

func setupRouter(svc ProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.RegisterCustomValidators()

	pc := NewProductController(svc, 1<<20)
	r := gin.New()
	withIdentity := func(c *gin.Context) {
		middleware.SetIdentity(c, testSeller, "tok")
		c.Next()
	}
	r.GET("/api/products/list", pc.GetProducts)
	r.GET("/api/products/:id", pc.GetProductByID)
	r.POST("/api/products/add", withIdentity, pc.CreateProduct)
	r.PUT("/api/products/:id", withIdentity, pc.UpdateProduct)
	r.DELETE("/api/products/:id", withIdentity, pc.DeleteProduct)
	return r
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCreateProduct(t *testing.T) {
	fields := map[string]string{
		"name":        "Phone",
		"description": "A phone",
		"price":       "499.99",
		"category":    "electronics",
		"stock":       "5",
		"imageUrls":   "https://img.example.com/a.png",
	}

	t.Run("success", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("CreateProduct", mock.Anything, testSeller, mock.MatchedBy(func(in services.CreateProductInput) bool {
			return in.Name == "Phone" && in.Price == 499.99 && in.Stock == 5 &&
				len(in.ImageURLs) == 1 && len(in.Uploads) == 1 && in.Uploads[0].Filename == "front.png"
		})).Return(&models.Product{ID: "p1", Name: "Phone"}, nil)

		body, ct := multipartBody(t, fields, formFile{"images", "front.png", []byte("png")})
		req := httptest.NewRequest(http.MethodPost, "/api/products/add", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"message":"Product created successfully"`)
		assert.Contains(t, w.Body.String(), `"id":"p1"`)
		svc.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockProductService)
		body, ct := multipartBody(t, map[string]string{"name": "Phone"})
		req := httptest.NewRequest(http.MethodPost, "/api/products/add", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Validation failed")
		svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects non-image upload", func(t *testing.T) {
		svc := new(MockProductService)
		body, ct := multipartBody(t, fields, formFile{"images", "payload.exe", []byte("MZ")})
		req := httptest.NewRequest(http.MethodPost, "/api/products/add", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid image type for file payload.exe")
	})
}

func TestGetProducts(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("ListProducts", mock.Anything, mock.MatchedBy(func(p services.ListProductsParams) bool {
			return p.Page == 3 && p.Limit == 2 && p.Category == "books" &&
				p.MinPrice != nil && *p.MinPrice == 30 && p.MaxPrice != nil && *p.MaxPrice == 950
		})).Return(&services.ProductList{
			Products: []models.Product{{ID: "p1"}},
			Meta:     services.ListMeta{Page: 3, Limit: 2, Total: 5, TotalPages: 3},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products/list?page=3&limit=2&category=books&minprice=30&maxprice=950", nil)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"totalPages":3`)
		svc.AssertExpectations(t)
	})

	t.Run("bad price", func(t *testing.T) {
		svc := new(MockProductService)
		req := httptest.NewRequest(http.MethodGet, "/api/products/list?minprice=cheap", nil)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid minprice value")
	})
}

func TestGetProductByID(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetProduct", mock.Anything, "p1").Return(&models.Product{ID: "p1", Name: "Phone", Price: 500}, nil)
	svc.On("GetProduct", mock.Anything, "p2").Return(nil, services.ErrProductNotFound)
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/p1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Phone"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/p2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Product not found")
}

func TestUpdateProduct(t *testing.T) {
	t.Run("not owner", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("UpdateProduct", mock.Anything, testSeller, "p1", mock.Anything).Return(nil, services.ErrNotOwner)

		req := httptest.NewRequest(http.MethodPut, "/api/products/p1", strings.NewReader(`{"price":10}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("negative price", func(t *testing.T) {
		svc := new(MockProductService)
		req := httptest.NewRequest(http.MethodPut, "/api/products/p1", strings.NewReader(`{"price":-1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteProduct(t *testing.T) {
	svc := new(MockProductService)
	svc.On("DeleteProduct", mock.Anything, testSeller, "p1").Return(nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Product deleted successfully")
}
