package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yashrajoria/shopswift/services/payment-service/models"
)

var (
	ErrNotFound = errors.New("payment not found")
	// ErrNotPending is returned when no pending payment matched a completion or failure.
	ErrNotPending = errors.New("payment not found or already processed")
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByOrderID lists every payment attempt for an order, newest first.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// MarkCompleted flips a pending payment to completed in a single conditional
// update. It never touches a completed or failed payment.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error {
	return r.finish(ctx, gatewayOrderID, map[string]interface{}{
		"gateway_payment_id": gatewayPaymentID,
		"signature":          signature,
		"status":             models.StatusCompleted,
		"updated_at":         time.Now().UTC(),
	})
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, gatewayOrderID string) error {
	return r.finish(ctx, gatewayOrderID, map[string]interface{}{
		"status":     models.StatusFailed,
		"updated_at": time.Now().UTC(),
	})
}

func (r *PaymentRepository) finish(ctx context.Context, gatewayOrderID string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
