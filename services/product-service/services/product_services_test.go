package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/shopswift/services/common/auth"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/product-service/models"
	"github.com/yashrajoria/shopswift/services/product-service/repository"
)

type memRepo struct {
	mu       sync.Mutex
	products map[string]models.Product
	finds    int
}

func newMemRepo(products ...models.Product) *memRepo {
	r := &memRepo{products: map[string]models.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memRepo) List(_ context.Context, f repository.ListFilter, skip, limit int64) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Product
	for _, p := range r.products {
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if skip >= total {
		return []models.Product{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (r *memRepo) Update(_ context.Context, id string, u models.ProductUpdate) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	r.products[id] = p
	return &p, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type memImages struct {
	keys []string
}

func (m *memImages) Upload(_ context.Context, key, _ string, _ int64, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "https://cdn.example.com/" + key, nil
}

const (
	p1 = "11111111-1111-1111-1111-111111111111"
	p2 = "22222222-2222-2222-2222-222222222222"
)

var (
	seller = auth.Identity{ID: "seller-1", Role: auth.RoleSeller}
	other  = auth.Identity{ID: "seller-2", Role: auth.RoleSeller}
)

func newTestCache(t *testing.T) *ProductCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewProductCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateProduct(t *testing.T) {
	t.Run("stores uploads and urls", func(t *testing.T) {
		repo := newMemRepo()
		images := &memImages{}
		svc := NewProductService(repo, nil, images, "products/", nil)
		svc.newID = func() string { return p1 }

		p, err := svc.CreateProduct(context.Background(), seller, CreateProductInput{
			Name:      " Phone ",
			Price:     500,
			Category:  "Electronics",
			Stock:     3,
			ImageURLs: []string{"https://img.example.com/a.png"},
			Uploads: []ImageUpload{{
				Filename:    "front.PNG",
				ContentType: "image/png",
				Size:        3,
				Open: func() (io.ReadCloser, error) {
					return io.NopCloser(bytes.NewReader([]byte("png"))), nil
				},
			}},
		})
		require.NoError(t, err)

		assert.Equal(t, "Phone", p.Name)
		assert.Equal(t, "electronics", p.Category)
		assert.Equal(t, "seller-1", p.Seller)
		assert.Equal(t, []string{"products/" + p1 + "/0.png"}, images.keys)
		assert.Equal(t, []string{"https://img.example.com/a.png", "https://cdn.example.com/products/" + p1 + "/0.png"}, p.Images)
		assert.Contains(t, repo.products, p1)
	})

	t.Run("uploads without store", func(t *testing.T) {
		svc := NewProductService(newMemRepo(), nil, nil, "products/", nil)
		_, err := svc.CreateProduct(context.Background(), seller, CreateProductInput{
			Name:    "Phone",
			Uploads: []ImageUpload{{Filename: "a.png"}},
		})
		assert.ErrorIs(t, err, ErrUploadsDisabled)
	})
}

func TestGetProduct(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		svc := NewProductService(newMemRepo(), nil, nil, "", nil)
		_, err := svc.GetProduct(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrInvalidProductID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewProductService(newMemRepo(), nil, nil, "", nil)
		_, err := svc.GetProduct(context.Background(), p1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("served from cache after first read", func(t *testing.T) {
		repo := newMemRepo(models.Product{ID: p1, Name: "Phone", Price: 500, Seller: seller.ID})
		svc := NewProductService(repo, newTestCache(t), nil, "", nil)

		for i := 0; i < 3; i++ {
			p, err := svc.GetProduct(context.Background(), p1)
			require.NoError(t, err)
			assert.Equal(t, "Phone", p.Name)
		}
		assert.Equal(t, 1, repo.finds)
	})
}

func TestListProducts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var seed []models.Product
	for i, price := range []float64{10, 30, 500, 950, 1200} {
		seed = append(seed, models.Product{
			ID:        string(rune('a' + i)),
			Price:     price,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	t.Run("last partial page", func(t *testing.T) {
		svc := NewProductService(newMemRepo(seed...), nil, nil, "", nil)
		list, err := svc.ListProducts(context.Background(), ListProductsParams{Page: 3, Limit: 2})
		require.NoError(t, err)

		assert.Len(t, list.Products, 1)
		assert.Equal(t, ListMeta{Page: 3, Limit: 2, Total: 5, TotalPages: 3}, list.Meta)
	})

	t.Run("inclusive price range", func(t *testing.T) {
		svc := NewProductService(newMemRepo(seed...), nil, nil, "", nil)
		params := ListProductsParams{Page: 1, Limit: 10}
		params.MinPrice = floatPtr(30)
		params.MaxPrice = floatPtr(950)

		list, err := svc.ListProducts(context.Background(), params)
		require.NoError(t, err)

		var prices []float64
		for _, p := range list.Products {
			prices = append(prices, p.Price)
		}
		assert.ElementsMatch(t, []float64{30, 500, 950}, prices)
		assert.Equal(t, int64(3), list.Meta.Total)
	})

	t.Run("inverted range", func(t *testing.T) {
		svc := NewProductService(newMemRepo(), nil, nil, "", nil)
		params := ListProductsParams{Page: 1, Limit: 10}
		params.MinPrice = floatPtr(100)
		params.MaxPrice = floatPtr(10)

		_, err := svc.ListProducts(context.Background(), params)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.From(err).Code)
	})
}

func TestUpdateProduct(t *testing.T) {
	price := 650.0

	t.Run("owner updates and cache is invalidated", func(t *testing.T) {
		repo := newMemRepo(models.Product{ID: p1, Name: "Phone", Price: 500, Seller: seller.ID})
		svc := NewProductService(repo, newTestCache(t), nil, "", nil)

		_, err := svc.GetProduct(context.Background(), p1)
		require.NoError(t, err)

		updated, err := svc.UpdateProduct(context.Background(), seller, p1, models.ProductUpdate{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, 650.0, updated.Price)

		p, err := svc.GetProduct(context.Background(), p1)
		require.NoError(t, err)
		assert.Equal(t, 650.0, p.Price)
	})

	t.Run("non owner", func(t *testing.T) {
		repo := newMemRepo(models.Product{ID: p1, Price: 500, Seller: seller.ID})
		svc := NewProductService(repo, nil, nil, "", nil)

		_, err := svc.UpdateProduct(context.Background(), other, p1, models.ProductUpdate{Price: &price})
		assert.ErrorIs(t, err, ErrNotOwner)
		assert.Equal(t, 500.0, repo.products[p1].Price)
	})

	t.Run("empty update", func(t *testing.T) {
		repo := newMemRepo(models.Product{ID: p1, Seller: seller.ID})
		svc := NewProductService(repo, nil, nil, "", nil)

		_, err := svc.UpdateProduct(context.Background(), seller, p1, models.ProductUpdate{})
		require.Error(t, err)
		assert.Equal(t, "No fields to update", apperrors.From(err).Message)
	})
}

func TestDeleteProduct(t *testing.T) {
	t.Run("non owner gets 403 and product stays", func(t *testing.T) {
		repo := newMemRepo(models.Product{ID: p1, Seller: seller.ID})
		svc := NewProductService(repo, nil, nil, "", nil)

		err := svc.DeleteProduct(context.Background(), other, p1)
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apperrors.From(err).Code)
		assert.Contains(t, repo.products, p1)
	})

	t.Run("owner deletes", func(t *testing.T) {
		repo := newMemRepo(models.Product{ID: p1, Seller: seller.ID})
		svc := NewProductService(repo, nil, nil, "", nil)

		require.NoError(t, svc.DeleteProduct(context.Background(), seller, p1))
		assert.NotContains(t, repo.products, p1)
	})

	t.Run("missing", func(t *testing.T) {
		svc := NewProductService(newMemRepo(), nil, nil, "", nil)
		assert.ErrorIs(t, svc.DeleteProduct(context.Background(), seller, p2), ErrProductNotFound)
	})
}
