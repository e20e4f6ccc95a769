package models

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

type Payment struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID          string    `gorm:"index;not null" json:"orderId"`
	UserID           string    `gorm:"index;not null" json:"userId"`
	Amount           float64   `gorm:"not null" json:"amount"`
	AmountMinor      int64     `gorm:"not null" json:"amountMinor"`
	Currency         string    `gorm:"type:varchar(10);not null" json:"currency"`
	Provider         string    `gorm:"type:varchar(20);not null" json:"provider"`
	GatewayOrderID   string    `gorm:"uniqueIndex;not null" json:"gatewayOrderId"`
	GatewayPaymentID *string   `json:"gatewayPaymentId,omitempty"`
	Signature        *string   `json:"-"`
	Status           string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
