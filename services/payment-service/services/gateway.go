package services

import (
	"context"
	"errors"
	"strings"
)

// MaxReceiptLen is the longest receipt Razorpay accepts.
const MaxReceiptLen = 40

var (
	// ErrGateway wraps failures talking to the payment provider.
	ErrGateway = errors.New("payment gateway error")
	// ErrVerifyUnsupported is returned by gateways that confirm payments by webhook only.
	ErrVerifyUnsupported = errors.New("gateway confirms payments by webhook")
)

type GatewayOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is what the client needs to complete payment with the provider.
type GatewayOrder struct {
	ID           string
	AmountMinor  int64
	Currency     string
	ClientSecret string
}

// Gateway opens charges with an external payment provider and checks
// the provider's completion signature.
type Gateway interface {
	Name() string
	KeyID() string
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) (bool, error)
}

// ReceiptFor derives a gateway receipt from an order id. UUIDs lose their
// dashes so the result stays within MaxReceiptLen.
func ReceiptFor(orderID string) string {
	r := "rcpt_" + strings.ReplaceAll(orderID, "-", "")
	if len(r) > MaxReceiptLen {
		r = r[:MaxReceiptLen]
	}
	return r
}
