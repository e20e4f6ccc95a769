package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/clients"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/events"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/validation"
	"github.com/yashrajoria/shopswift/services/order-service/models"
	"github.com/yashrajoria/shopswift/services/order-service/repository"
)

var (
	ErrInvalidOrderID   = apperrors.BadRequest("Invalid order id")
	ErrOrderNotFound    = apperrors.NotFound("Order not found")
	ErrAccessDenied     = apperrors.Forbidden("Access denied")
	ErrNoItems          = apperrors.BadRequest("Order must contain at least one item")
	ErrInvalidStatus    = apperrors.BadRequest("Invalid order status")
	ErrCancelNotAllowed = apperrors.BadRequest("Only pending orders can be cancelled")
)

// OrderStore is implemented by repository.OrderRepository.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, from, to models.Status, payment *models.PaymentInfo) (*models.Order, error)
}

// ProductLookup reads the product directory.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (*clients.Product, error)
}

type ItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	// Price is accepted for client compatibility and ignored.
	Price float64 `json:"price"`
}

type CreateOrderInput struct {
	Items           []ItemInput            `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

type ListMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type OrderList struct {
	Orders []models.Order `json:"orders"`
	Meta   ListMeta       `json:"meta"`
}

type OrderService struct {
	store     OrderStore
	products  ProductLookup
	publisher events.Publisher
	metrics   *awspkg.MetricsClient
	newID     func() string
	nowFunc   func() time.Time
}

func NewOrderService(store OrderStore, products ProductLookup, publisher events.Publisher, metrics *awspkg.MetricsClient) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		store:     store,
		products:  products,
		publisher: publisher,
		metrics:   metrics,
		newID:     uuid.NewString,
		nowFunc:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder verifies every item against the product directory and persists
// the order once, only after all items pass. Prices come from the directory.
//
// Stock is checked, not reserved: two concurrent orders may both pass.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}

	lines, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, item := range lines {
		p, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, mapProductError(item.ProductID, err)
		}
		if p.Stock < item.Quantity {
			return nil, apperrors.BadRequest(fmt.Sprintf("Insufficient stock for %s", p.Name))
		}

		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      p.Name,
			Image:     p.FirstImage(),
			Price:     p.Price,
			Quantity:  item.Quantity,
		})
	}

	now := s.nowFunc()
	order := &models.Order{
		ID:              s.newID(),
		UserID:          userID,
		Items:           items,
		TotalAmount:     models.Total(items),
		ShippingAddress: in.ShippingAddress,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, apperrors.Internal(err)
	}

	logger.Info(ctx, "order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Float64("total_amount", order.TotalAmount),
	)
	s.metrics.RecordCountAsync(awspkg.MetricOrdersCreated, nil)
	events.PublishAsync(s.publisher, events.New(events.OrderCreated, order.ID, order))
	return order, nil
}

// mergeItems folds repeated product ids into one line, keeping first-seen
// order, so stock is compared against the combined quantity.
func mergeItems(in []ItemInput) ([]ItemInput, error) {
	lines := make([]ItemInput, 0, len(in))
	seen := make(map[string]int, len(in))
	for _, item := range in {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" || item.Quantity < 1 {
			return nil, apperrors.BadRequest("Each item needs a productId and a quantity of at least 1")
		}
		i, ok := seen[productID]
		if !ok {
			seen[productID] = len(lines)
			lines = append(lines, ItemInput{ProductID: productID, Quantity: item.Quantity})
			continue
		}
		if item.Quantity > math.MaxInt-lines[i].Quantity {
			return nil, apperrors.BadRequest(fmt.Sprintf("Quantity too large for %s", productID))
		}
		lines[i].Quantity += item.Quantity
	}
	return lines, nil
}

// GetOrder returns the order to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, caller auth.Identity, id string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.ID && !caller.HasRole(auth.RoleAdmin) {
		return nil, ErrAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page, limit int) (*OrderList, error) {
	skip := int64(page-1) * int64(limit)
	orders, total, err := s.store.FindByUserID(ctx, userID, skip, int64(limit))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &OrderList{
		Orders: orders,
		Meta: ListMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: validation.TotalPages(total, limit),
			HasMore:    skip+int64(len(orders)) < total,
		},
	}, nil
}

// CancelOrder lets the owner cancel a pending order.
func (s *OrderService) CancelOrder(ctx context.Context, caller auth.Identity, id string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.ID {
		return nil, ErrAccessDenied
	}
	if order.Status != models.StatusPending {
		return nil, ErrCancelNotAllowed
	}

	updated, err := s.transition(ctx, order, models.StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCountAsync(awspkg.MetricOrdersCancelled, nil)
	return updated, nil
}

// UpdateStatus applies an admin status change validated against the transition table.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, status, nil)
}

// MarkPaid records a completed payment and moves a pending order to paid.
// Repeating it for the payment already recorded is a no-op.
func (s *OrderService) MarkPaid(ctx context.Context, id, paymentID string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusPaid && order.PaymentInfo != nil && order.PaymentInfo.ID == paymentID {
		return order, nil
	}
	return s.transition(ctx, order, models.StatusPaid, &models.PaymentInfo{ID: paymentID, Status: "completed"})
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.Status, payment *models.PaymentInfo) (*models.Order, error) {
	from := order.Status
	if !from.CanTransition(to) {
		return nil, apperrors.BadRequest(fmt.Sprintf("Cannot change order status from %s to %s", from, to))
	}

	updated, err := s.store.UpdateStatus(ctx, order.ID, from, to, payment)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, apperrors.Conflict("Order status was changed by another request", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	logger.Info(ctx, "order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	events.PublishAsync(s.publisher, events.New(events.OrderStatusChanged, order.ID, map[string]interface{}{
		"orderId": order.ID,
		"userId":  order.UserID,
		"from":    from,
		"to":      to,
	}))
	return updated, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidOrderID
	}
	order, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return order, nil
}

func mapProductError(productID string, err error) error {
	switch {
	case errors.Is(err, clients.ErrProductNotFound):
		return apperrors.NotFound(fmt.Sprintf("Product %s not found", productID))
	case errors.Is(err, clients.ErrUpstreamTimeout):
		return apperrors.UpstreamTimeout("Product service timed out", err)
	default:
		return apperrors.Upstream("Error contacting product service", err)
	}
}
