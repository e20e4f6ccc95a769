package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yashrajoria/shopswift/api-gateway/config"
	"github.com/yashrajoria/shopswift/api-gateway/utils"
)

func backendNamed(name string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backend", name)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRegisterAllRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	names := []string{"auth", "products", "cart", "orders", "payments", "notifications"}
	servers := map[string]*httptest.Server{}
	for _, n := range names {
		servers[n] = backendNamed(n)
		defer servers[n].Close()
	}

	r := gin.New()
	RegisterAllRoutes(r, utils.NewForwarder(time.Second), config.Services{
		Auth:          servers["auth"].URL,
		Products:      servers["products"].URL,
		Cart:          servers["cart"].URL,
		Orders:        servers["orders"].URL,
		Payments:      servers["payments"].URL,
		Notifications: servers["notifications"].URL,
	})

	tests := []struct {
		method  string
		path    string
		backend string
	}{
		{http.MethodPost, "/api/auth/login", "auth"},
		{http.MethodGet, "/api/auth/addresses", "auth"},
		{http.MethodGet, "/api/products/list", "products"},
		{http.MethodGet, "/api/cart", "cart"},
		{http.MethodDelete, "/api/cart/remove/p1", "cart"},
		{http.MethodPut, "/api/orders/o1/cancel", "orders"},
		{http.MethodPost, "/api/payments/webhook", "payments"},
		{http.MethodGet, "/api/notifications/logs", "notifications"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.backend, w.Header().Get("X-Backend"))
		})
	}

	for _, path := range []string{
		"/api/orders/internal/o1/payment",
		"/api/auth/internal/users/u1",
		"/api/products/internal",
	} {
		t.Run("hides "+path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Empty(t, w.Header().Get("X-Backend"))
		})
	}
}
