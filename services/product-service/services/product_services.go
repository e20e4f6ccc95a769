package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/auth"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/product-service/models"
	"github.com/yashrajoria/shopswift/services/product-service/repository"
)

var (
	ErrInvalidProductID = apperrors.BadRequest("Invalid product id")
	ErrProductNotFound  = apperrors.NotFound("Product not found")
	ErrNotOwner         = apperrors.Forbidden("You can only modify your own products")
	ErrUploadsDisabled  = apperrors.BadRequest("Image uploads are not configured")
)

// ProductRepository is implemented by repository.ProductRepository.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, f repository.ListFilter, skip, limit int64) ([]models.Product, int64, error)
	Update(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore uploads product images; satisfied by awspkg.S3ImageStore.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
}

// ImageUpload is one multipart file to store.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	ImageURLs   []string
	Uploads     []ImageUpload
}

type ListProductsParams struct {
	repository.ListFilter
	Page  int
	Limit int
}

type ListMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ProductList struct {
	Products []models.Product `json:"products"`
	Meta     ListMeta         `json:"meta"`
}

type ProductService struct {
	repo    ProductRepository
	cache   *ProductCache
	images  ImageStore
	prefix  string
	metrics *awspkg.MetricsClient
	newID   func() string
	nowFunc func() time.Time
}

// NewProductService wires the service. cache and images may be nil.
func NewProductService(repo ProductRepository, cache *ProductCache, images ImageStore, imagePrefix string, metrics *awspkg.MetricsClient) *ProductService {
	return &ProductService{
		repo:    repo,
		cache:   cache,
		images:  images,
		prefix:  imagePrefix,
		metrics: metrics,
		newID:   uuid.NewString,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, seller auth.Identity, in CreateProductInput) (*models.Product, error) {
	if len(in.Uploads) > 0 && s.images == nil {
		return nil, ErrUploadsDisabled
	}

	id := s.newID()
	images := make([]string, 0, len(in.ImageURLs)+len(in.Uploads))
	images = append(images, in.ImageURLs...)
	for i, up := range in.Uploads {
		url, err := s.upload(ctx, id, i, up)
		if err != nil {
			return nil, apperrors.Upstream("Failed to upload product image", err)
		}
		images = append(images, url)
	}

	now := s.nowFunc()
	product := &models.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Stock:       in.Stock,
		Images:      images,
		Seller:      seller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperrors.Internal(err)
	}

	logger.Info(ctx, "product created", zap.String("product_id", id), zap.String("seller", seller.ID))
	s.metrics.RecordCountAsync(awspkg.MetricProductsCreated, nil)
	return product, nil
}

func (s *ProductService) upload(ctx context.Context, productID string, idx int, up ImageUpload) (string, error) {
	f, err := up.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	ext := strings.ToLower(path.Ext(up.Filename))
	key := fmt.Sprintf("%s%s/%d%s", s.prefix, productID, idx, ext)
	return s.images.Upload(ctx, key, up.ContentType, up.Size, f)
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidProductID
	}

	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.cache.Set(ctx, p)
	return p, nil
}

func (s *ProductService) ListProducts(ctx context.Context, params ListProductsParams) (*ProductList, error) {
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return nil, apperrors.BadRequest("minprice must be less than or equal to maxprice")
	}

	skip := int64(params.Page-1) * int64(params.Limit)
	products, total, err := s.repo.List(ctx, params.ListFilter, skip, int64(params.Limit))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &ProductList{
		Products: products,
		Meta: ListMeta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: validation.TotalPages(total, params.Limit),
		},
	}, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, caller auth.Identity, id string, u models.ProductUpdate) (*models.Product, error) {
	if _, err := s.authorizeOwner(ctx, caller, id); err != nil {
		return nil, err
	}
	if u.Empty() {
		return nil, apperrors.BadRequest("No fields to update")
	}

	p, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.cache.Invalidate(ctx, id)
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, caller auth.Identity, id string) error {
	if _, err := s.authorizeOwner(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.cache.Invalidate(ctx, id)
	logger.Info(ctx, "product deleted", zap.String("product_id", id), zap.String("seller", caller.ID))
	return nil
}

// authorizeOwner loads the product from the store (never the cache) and
// checks the caller is its seller.
func (s *ProductService) authorizeOwner(ctx context.Context, caller auth.Identity, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidProductID
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if p.Seller != caller.ID {
		return nil, ErrNotOwner
	}
	return p, nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return apperrors.Internal(err)
}
