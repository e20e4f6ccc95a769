package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yashrajoria/shopswift/services/common/clients"
	"github.com/yashrajoria/shopswift/services/payment-service/models"
)

const DefaultRazorpayBaseURL = "https://api.razorpay.com"

// RazorpayGateway talks to the Razorpay orders API with basic auth.
type RazorpayGateway struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewRazorpayGateway(baseURL, keyID, keySecret string, timeout time.Duration) *RazorpayGateway {
	if baseURL == "" {
		baseURL = DefaultRazorpayBaseURL
	}
	return &RazorpayGateway{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *RazorpayGateway) Name() string  { return models.ProviderRazorpay }
func (g *RazorpayGateway) KeyID() string { return g.keyID }

type razorpayOrderRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error) {
	if len(req.Receipt) > MaxReceiptLen {
		req.Receipt = req.Receipt[:MaxReceiptLen]
	}
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:         req.AmountMinor,
		Currency:       req.Currency,
		Receipt:        req.Receipt,
		PaymentCapture: 1,
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, clients.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: razorpay returned %d: %s", ErrGateway, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode razorpay order: %v", ErrGateway, err)
	}
	return &GatewayOrder{ID: out.ID, AmountMinor: out.Amount, Currency: out.Currency}, nil
}

func (g *RazorpayGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) (bool, error) {
	return ValidSignature(g.keySecret, gatewayOrderID, gatewayPaymentID, signature), nil
}
