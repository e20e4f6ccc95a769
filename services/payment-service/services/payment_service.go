package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/auth"
	"github.com/yashrajoria/shopswift/services/common/clients"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/events"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/payment-service/models"
	"github.com/yashrajoria/shopswift/services/payment-service/repository"
)

var (
	ErrInvalidSignature   = apperrors.BadRequest("Invalid signature")
	ErrAlreadyProcessed   = apperrors.NotFound("Payment not found or already processed")
	ErrOrderNotFound      = apperrors.NotFound("Order not found")
	ErrOrderNotPayable    = apperrors.BadRequest("Order is not awaiting payment")
	ErrAccessDenied       = apperrors.Forbidden("Access denied")
	ErrWebhookUnsupported = apperrors.BadRequest("Webhooks are not configured")
	ErrInvalidWebhook     = apperrors.BadRequest("Invalid webhook")
)

// PaymentStore is implemented by repository.PaymentRepository.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) ([]models.Payment, error)
	MarkCompleted(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error
	MarkFailed(ctx context.Context, gatewayOrderID string) error
}

// OrderLookup is implemented by clients.OrderClient.
type OrderLookup interface {
	GetOrder(ctx context.Context, orderID, bearerToken string) (*clients.Order, error)
	MarkPaid(ctx context.Context, orderID, paymentID string) error
}

// WebhookParser is implemented by StripeGateway.
type WebhookParser interface {
	ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type Options struct {
	Currency        string
	MinorUnitFactor float64
}

type CreatePaymentResult struct {
	KeyID        string          `json:"keyId"`
	OrderID      string          `json:"orderId"`
	Amount       int64           `json:"amount"`
	Currency     string          `json:"currency"`
	ClientSecret string          `json:"clientSecret,omitempty"`
	Payment      *models.Payment `json:"payment"`
}

type VerifyInput struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
}

type PaymentService struct {
	store     PaymentStore
	orders    OrderLookup
	gateway   Gateway
	webhooks  WebhookParser
	publisher events.Publisher
	metrics   *awspkg.MetricsClient
	opts      Options
	newID     func() string
}

func NewPaymentService(store PaymentStore, orders OrderLookup, gateway Gateway, webhooks WebhookParser, publisher events.Publisher, metrics *awspkg.MetricsClient, opts Options) *PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.MinorUnitFactor <= 0 {
		opts.MinorUnitFactor = 100
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &PaymentService{
		store:     store,
		orders:    orders,
		gateway:   gateway,
		webhooks:  webhooks,
		publisher: publisher,
		metrics:   metrics,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// ToMinorUnits converts a major-unit amount with the configured factor.
func (s *PaymentService) ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * s.opts.MinorUnitFactor))
}

// CreatePayment opens a gateway order for the caller's pending order and
// records a pending payment.
func (s *PaymentService) CreatePayment(ctx context.Context, caller auth.Identity, token, orderID string) (*CreatePaymentResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID, token)
	if err != nil {
		return nil, mapOrderError(err)
	}
	if order.UserID != "" && order.UserID != caller.ID {
		return nil, ErrAccessDenied
	}
	if order.Status != "pending" {
		return nil, ErrOrderNotPayable
	}

	amountMinor := s.ToMinorUnits(order.TotalAmount)
	gwOrder, err := s.gateway.CreateOrder(ctx, GatewayOrderRequest{
		AmountMinor: amountMinor,
		Currency:    s.opts.Currency,
		Receipt:     ReceiptFor(orderID),
		Notes:       map[string]string{"order_id": orderID, "user_id": caller.ID},
	})
	if err != nil {
		return nil, mapGatewayError(err)
	}

	payment := &models.Payment{
		ID:             s.newID(),
		OrderID:        orderID,
		UserID:         caller.ID,
		Amount:         order.TotalAmount,
		AmountMinor:    amountMinor,
		Currency:       s.opts.Currency,
		Provider:       s.gateway.Name(),
		GatewayOrderID: gwOrder.ID,
		Status:         models.StatusPending,
	}
	if err := s.store.Create(ctx, payment); err != nil {
		return nil, apperrors.Internal(err)
	}

	logger.Info(ctx, "payment initiated",
		zap.String("order_id", orderID),
		zap.String("gateway_order_id", gwOrder.ID),
		zap.Int64("amount_minor", amountMinor),
	)
	s.metrics.RecordCountAsync(awspkg.MetricPaymentsCreated, map[string]string{"Provider": s.gateway.Name()})

	currency := gwOrder.Currency
	if currency == "" {
		currency = s.opts.Currency
	}
	return &CreatePaymentResult{
		KeyID:        s.gateway.KeyID(),
		OrderID:      gwOrder.ID,
		Amount:       gwOrder.AmountMinor,
		Currency:     currency,
		ClientSecret: gwOrder.ClientSecret,
		Payment:      payment,
	}, nil
}

// VerifyPayment checks the gateway signature and completes the matching
// pending payment. A replay after success fails with ErrAlreadyProcessed.
func (s *PaymentService) VerifyPayment(ctx context.Context, in VerifyInput) (*models.Payment, error) {
	ok, err := s.gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature)
	if errors.Is(err, ErrVerifyUnsupported) {
		return nil, apperrors.BadRequest("This gateway confirms payments by webhook")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		logger.Warn(ctx, "payment signature mismatch", zap.String("gateway_order_id", in.GatewayOrderID))
		return nil, ErrInvalidSignature
	}

	return s.complete(ctx, in.GatewayOrderID, in.GatewayPaymentID, in.Signature)
}

// GetPaymentsForOrder returns the payments recorded for an order. Users only
// see their own; admins see all.
func (s *PaymentService) GetPaymentsForOrder(ctx context.Context, caller auth.Identity, orderID string) ([]models.Payment, error) {
	payments, err := s.store.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if caller.HasRole(auth.RoleAdmin) {
		return payments, nil
	}

	mine := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.UserID == caller.ID {
			mine = append(mine, p)
		}
	}
	if len(mine) == 0 {
		return nil, apperrors.NotFound("No payments found for this order")
	}
	return mine, nil
}

// HandleWebhook applies a signed Stripe event. Events for unknown or already
// settled payments are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if s.webhooks == nil {
		return ErrWebhookUnsupported
	}
	event, err := s.webhooks.ParseWebhook(payload, sigHeader)
	if err != nil {
		logger.Warn(ctx, "stripe webhook verification failed", zap.Error(err))
		return ErrInvalidWebhook
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		logger.Debug(ctx, "ignoring stripe event", zap.String("event_type", string(event.Type)))
		return nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return apperrors.BadRequest("Invalid webhook payload")
	}

	if event.Type == "payment_intent.succeeded" {
		_, err = s.complete(ctx, pi.ID, pi.ID, event.ID)
	} else {
		err = s.fail(ctx, pi.ID)
	}
	if errors.Is(err, ErrAlreadyProcessed) {
		logger.Info(ctx, "skipping settled payment webhook", zap.String("payment_intent_id", pi.ID))
		return nil
	}
	return err
}

func (s *PaymentService) complete(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.Payment, error) {
	err := s.store.MarkCompleted(ctx, gatewayOrderID, gatewayPaymentID, signature)
	if errors.Is(err, repository.ErrNotPending) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	payment, err := s.store.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	logger.Info(ctx, "payment completed",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
	)
	s.metrics.RecordCountAsync(awspkg.MetricPaymentSucceeded, map[string]string{"Provider": payment.Provider})

	if err := s.orders.MarkPaid(ctx, payment.OrderID, gatewayPaymentID); err != nil {
		logger.Error(ctx, "failed to notify order service of payment", err,
			zap.String("order_id", payment.OrderID),
		)
	}
	events.PublishAsync(s.publisher, events.New(events.PaymentCompleted, payment.OrderID, payment))
	return payment, nil
}

func (s *PaymentService) fail(ctx context.Context, gatewayOrderID string) error {
	err := s.store.MarkFailed(ctx, gatewayOrderID)
	if errors.Is(err, repository.ErrNotPending) {
		return ErrAlreadyProcessed
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	payment, err := s.store.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return apperrors.Internal(err)
	}
	logger.Warn(ctx, "payment failed", zap.String("payment_id", payment.ID), zap.String("order_id", payment.OrderID))
	s.metrics.RecordCountAsync(awspkg.MetricPaymentFailed, map[string]string{"Provider": payment.Provider})
	events.PublishAsync(s.publisher, events.New(events.PaymentFailed, payment.OrderID, payment))
	return nil
}

func mapOrderError(err error) error {
	switch {
	case errors.Is(err, clients.ErrOrderNotFound):
		return ErrOrderNotFound
	case errors.Is(err, clients.ErrOrderForbidden):
		return ErrAccessDenied
	case errors.Is(err, clients.ErrUpstreamTimeout):
		return apperrors.UpstreamTimeout("Order service timed out", err)
	default:
		return apperrors.Upstream("Error contacting order service", err)
	}
}

func mapGatewayError(err error) error {
	if errors.Is(err, clients.ErrUpstreamTimeout) {
		return apperrors.UpstreamTimeout("Payment gateway timed out", err)
	}
	return apperrors.Upstream("Payment gateway unavailable", err)
}
