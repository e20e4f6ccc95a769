package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderClient_GetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/orders/o1":
			_, _ = w.Write([]byte(`{"id":"o1","userId":"u1","totalAmount":1000,"status":"pending","items":[]}`))
		case "/api/orders/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/api/orders/theirs":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, "key", time.Second)
	ctx := context.Background()

	o, err := c.GetOrder(ctx, "o1", "tok")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, o.TotalAmount)
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, "u1", o.UserID)

	_, err = c.GetOrder(ctx, "missing", "tok")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = c.GetOrder(ctx, "theirs", "tok")
	assert.ErrorIs(t, err, ErrOrderForbidden)

	_, err = c.GetOrder(ctx, "o1", "wrong")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestOrderClient_MarkPaid(t *testing.T) {
	var gotKey, gotPath, gotPayment string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Internal-Key")
		gotPath = r.URL.Path
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotPayment = body["paymentId"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, "key", time.Second)
	require.NoError(t, c.MarkPaid(context.Background(), "o1", "pay_1"))

	assert.Equal(t, "key", gotKey)
	assert.Equal(t, "/api/orders/internal/o1/payment", gotPath)
	assert.Equal(t, "pay_1", gotPayment)
}
