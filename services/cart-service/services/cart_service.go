package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/cart-service/database"
	"github.com/yashrajoria/shopswift/services/cart-service/models"
	"github.com/yashrajoria/shopswift/services/common/clients"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/logger"
)

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 1000

var (
	ErrCartNotFound     = apperrors.NotFound("Cart not found")
	ErrItemNotFound     = apperrors.NotFound("Item not found in cart")
	ErrQuantityTooLarge = apperrors.BadRequest(fmt.Sprintf("Quantity cannot exceed %d per item", MaxLineQuantity))
)

// CartStore persists carts.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	UpdateCart(ctx context.Context, userID string, fn database.MutateFunc) (*models.Cart, error)
	DeleteCart(ctx context.Context, userID string) error
}

// ProductLookup reads the product directory.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (*clients.Product, error)
}

type CartService struct {
	store    CartStore
	products ProductLookup
	metrics  *awspkg.MetricsClient
}

func NewCartService(store CartStore, products ProductLookup, metrics *awspkg.MetricsClient) *CartService {
	return &CartService{store: store, products: products, metrics: metrics}
}

// GetCart returns the stored cart or an empty one.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if cart == nil {
		return models.NewCart(userID), nil
	}
	return cart, nil
}

// AddItem increments an existing line or snapshots the product into a new one.
// The directory is consulted at most once per call, even across retries.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity > MaxLineQuantity {
		return nil, ErrQuantityTooLarge
	}
	var snapshot *clients.Product

	cart, err := s.store.UpdateCart(ctx, userID, func(cart *models.Cart, _ bool) error {
		if i := cart.Find(productID); i >= 0 {
			if cart.Items[i].Quantity > MaxLineQuantity-quantity {
				return ErrQuantityTooLarge
			}
			cart.Items[i].Quantity += quantity
			return nil
		}

		if snapshot == nil {
			p, err := s.products.GetProduct(ctx, productID)
			if err != nil {
				return err
			}
			snapshot = p
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Name:      snapshot.Name,
			Price:     snapshot.Price,
			Image:     snapshot.FirstImage(),
			Quantity:  quantity,
		})
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, userID, err)
	}

	s.metrics.RecordCountAsync(awspkg.MetricCartWrites, map[string]string{"Operation": "add"})
	return cart, nil
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity > MaxLineQuantity {
		return nil, ErrQuantityTooLarge
	}
	cart, err := s.store.UpdateCart(ctx, userID, func(cart *models.Cart, exists bool) error {
		if !exists {
			return ErrCartNotFound
		}
		i := cart.Find(productID)
		if i < 0 {
			return ErrItemNotFound
		}
		if quantity <= 0 {
			cart.Remove(productID)
			return nil
		}
		cart.Items[i].Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, userID, err)
	}

	s.metrics.RecordCountAsync(awspkg.MetricCartWrites, map[string]string{"Operation": "update"})
	return cart, nil
}

// RemoveItem drops the line if present and persists either way.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	cart, err := s.store.UpdateCart(ctx, userID, func(cart *models.Cart, _ bool) error {
		cart.Remove(productID)
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, userID, err)
	}

	s.metrics.RecordCountAsync(awspkg.MetricCartWrites, map[string]string{"Operation": "remove"})
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.store.DeleteCart(ctx, userID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *CartService) mapError(ctx context.Context, userID string, err error) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, clients.ErrProductNotFound):
		return apperrors.NotFound("Product not found")
	case errors.Is(err, clients.ErrUpstreamTimeout):
		return apperrors.UpstreamTimeout("Product service timed out", err)
	case errors.Is(err, clients.ErrUpstream):
		return apperrors.Upstream("Product service unavailable", err)
	case errors.Is(err, database.ErrConflict):
		logger.Warn(ctx, "cart update conflict", zap.String("user_id", userID))
		s.metrics.RecordCountAsync(awspkg.MetricCartConflicts, nil)
		return apperrors.Conflict("Cart was modified concurrently, please retry", err)
	default:
		return apperrors.Internal(err)
	}
}
