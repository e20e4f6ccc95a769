package clients

import (
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
	// ErrProductNotFound is returned when the directory answers 404.
	ErrProductNotFound = errors.New("product not found")
	// ErrUpstream wraps transport failures and unexpected statuses.
	ErrUpstream = errors.New("upstream service error")
	// ErrUpstreamTimeout is returned when the call exceeds its deadline.
	ErrUpstreamTimeout = errors.New("upstream service timeout")
)

// Product is the directory view needed by cart and checkout.
type Product struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Stock  int      `json:"stock"`
	Images []string `json:"images"`
	Seller string   `json:"seller"`
}

// FirstImage returns the primary image or "".
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductClient calls the product service over HTTP.
type ProductClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetProduct fetches GET /api/products/:id.
func (c *ProductClient) GetProduct(ctx context.Context, productID string) (*Product, error) {
	endpoint := fmt.Sprintf("%s/api/products/%s", c.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return nil, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: product service returned %d", ErrUpstream, resp.StatusCode)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", ErrUpstream, err)
	}
	return &p, nil
}

// ClassifyTransportError maps an http.Client error to ErrUpstreamTimeout or ErrUpstream.
func ClassifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
