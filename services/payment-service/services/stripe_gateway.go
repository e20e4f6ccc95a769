package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/yashrajoria/shopswift/services/payment-service/models"
)

// StripeGateway opens PaymentIntents; completion arrives via webhook.
type StripeGateway struct {
	intents        paymentintent.Client
	publishableKey string
	webhookSecret  string
}

// NewStripeGateway uses backend when non-nil, otherwise the default API backend.
func NewStripeGateway(secretKey, publishableKey, webhookSecret string, backend stripe.Backend) *StripeGateway {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		intents:        paymentintent.Client{B: backend, Key: secretKey},
		publishableKey: publishableKey,
		webhookSecret:  webhookSecret,
	}
}

func (g *StripeGateway) Name() string  { return models.ProviderStripe }
func (g *StripeGateway) KeyID() string { return g.publishableKey }

func (g *StripeGateway) CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return &GatewayOrder{
		ID:           pi.ID,
		AmountMinor:  pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) VerifySignature(string, string, string) (bool, error) {
	return false, ErrVerifyUnsupported
}

// ParseWebhook checks the Stripe-Signature header and decodes the event.
func (g *StripeGateway) ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
