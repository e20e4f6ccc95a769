package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

func TestSignature(t *testing.T) {
	sig := SignPayment("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.True(t, ValidSignature("secret", "order_1", "pay_1", sig))
	assert.False(t, ValidSignature("other", "order_1", "pay_1", sig))
	assert.False(t, ValidSignature("secret", "order_1", "pay_2", sig))
	assert.False(t, ValidSignature("secret", "order_1", "pay_1", strings.ToUpper(sig)))
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	var got razorpayOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_key" || pass != "rzp_secret" || r.URL.Path != "/v1/orders" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"description":"bad auth"}}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":100050,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	g := NewRazorpayGateway(srv.URL, "rzp_key", "rzp_secret", time.Second)
	order, err := g.CreateOrder(context.Background(), GatewayOrderRequest{AmountMinor: 100050, Currency: "INR", Receipt: "receipt_o1"})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(100050), order.AmountMinor)
	assert.Equal(t, "receipt_o1", got.Receipt)
	assert.Equal(t, 1, got.PaymentCapture)

	_, err = g.CreateOrder(context.Background(), GatewayOrderRequest{AmountMinor: 1, Currency: "INR", Receipt: strings.Repeat("r", 60)})
	require.NoError(t, err)
	assert.Len(t, got.Receipt, MaxReceiptLen)

	bad := NewRazorpayGateway(srv.URL, "rzp_key", "wrong", time.Second)
	_, err = bad.CreateOrder(context.Background(), GatewayOrderRequest{AmountMinor: 1, Currency: "INR"})
	assert.ErrorIs(t, err, ErrGateway)
}

func TestReceiptFor(t *testing.T) {
	orderID := "213ff1f7-5c2e-4d8a-9b61-684dd47782a7"
	receipt := ReceiptFor(orderID)

	assert.LessOrEqual(t, len(receipt), MaxReceiptLen)
	assert.Equal(t, "rcpt_213ff1f75c2e4d8a9b61684dd47782a7", receipt)
	assert.Equal(t, "rcpt_o1", ReceiptFor("o1"))
	assert.Len(t, ReceiptFor(strings.Repeat("x", 80)), MaxReceiptLen)
}

func TestStripeGateway_CreateOrder(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = map[string]string{
			"amount":             r.Form.Get("amount"),
			"currency":           r.Form.Get("currency"),
			"metadata[order_id]": r.Form.Get("metadata[order_id]"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":100000,"currency":"inr","client_secret":"pi_123_secret_x","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	g := NewStripeGateway("sk_test_x", "pk_test_x", "whsec_x", backend)

	order, err := g.CreateOrder(context.Background(), GatewayOrderRequest{
		AmountMinor: 100000,
		Currency:    "INR",
		Notes:       map[string]string{"order_id": "o1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", order.ID)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "pi_123_secret_x", order.ClientSecret)
	assert.Equal(t, "pk_test_x", g.KeyID())
	assert.Equal(t, map[string]string{"amount": "100000", "currency": "inr", "metadata[order_id]": "o1"}, form)

	_, err = g.VerifySignature("pi_123", "pi_123", "sig")
	assert.ErrorIs(t, err, ErrVerifyUnsupported)
}

func signedStripeEvent(t *testing.T, secret, payload string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func TestStripeGateway_ParseWebhook(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "", "whsec_test", nil)
	header, payload := signedStripeEvent(t, "whsec_test", `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`)

	evt, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)

	_, err = g.ParseWebhook(payload, "t=1,v1=deadbeef")
	assert.Error(t, err)
}
