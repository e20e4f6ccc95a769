package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderForbidden = errors.New("order belongs to another user")
)

// Order is the order view needed to open a payment.
type Order struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

// OrderClient calls the order service over HTTP.
type OrderClient struct {
	baseURL     string
	internalKey string
	httpClient  *http.Client
}

func NewOrderClient(baseURL, internalKey string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		internalKey: internalKey,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// GetOrder fetches GET /api/orders/:id on behalf of the token's owner.
func (c *OrderClient) GetOrder(ctx context.Context, orderID, bearerToken string) (*Order, error) {
	endpoint := fmt.Sprintf("%s/api/orders/%s", c.baseURL, url.PathEscape(orderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		return nil, ErrOrderNotFound
	case http.StatusForbidden:
		return nil, ErrOrderForbidden
	default:
		return nil, fmt.Errorf("%w: order service returned %d", ErrUpstream, resp.StatusCode)
	}

	var o Order
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return nil, fmt.Errorf("%w: decode order: %v", ErrUpstream, err)
	}
	return &o, nil
}

// MarkPaid calls the internal PUT /api/orders/internal/:id/payment route.
func (c *OrderClient) MarkPaid(ctx context.Context, orderID, paymentID string) error {
	endpoint := fmt.Sprintf("%s/api/orders/internal/%s/payment", c.baseURL, url.PathEscape(orderID))

	body, err := json.Marshal(map[string]string{"paymentId": paymentID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Key", c.internalKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrOrderNotFound
	default:
		return fmt.Errorf("%w: order service returned %d", ErrUpstream, resp.StatusCode)
	}
}
