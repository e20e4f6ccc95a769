package config

import (
	"time"

	common "github.com/yashrajoria/shopswift/services/common/config"
)

// Services holds the base URL of every backend the gateway fronts.
type Services struct {
	Auth          string
	Products      string
	Cart          string
	Orders        string
	Payments      string
	Notifications string
}

type Config struct {
	Port         string
	ProxyTimeout time.Duration
	Services     Services
}

func Load() (*Config, error) {
	common.LoadDotEnv()

	cfg := &Config{
		Port:         common.GetEnv("PORT", "8080"),
		ProxyTimeout: common.GetEnvDuration("PROXY_TIMEOUT", 30*time.Second),
		Services: Services{
			Auth:          common.GetEnv("AUTH_SERVICE_URL", "http://auth-service:8081"),
			Products:      common.GetEnv("PRODUCT_SERVICE_URL", "http://product-service:8082"),
			Cart:          common.GetEnv("CART_SERVICE_URL", "http://cart-service:8086"),
			Orders:        common.GetEnv("ORDER_SERVICE_URL", "http://order-service:8083"),
			Payments:      common.GetEnv("PAYMENT_SERVICE_URL", "http://payment-service:8084"),
			Notifications: common.GetEnv("NOTIFICATION_SERVICE_URL", "http://notification-service:8085"),
		},
	}

	return cfg, common.Require(map[string]string{
		"AUTH_SERVICE_URL":         cfg.Services.Auth,
		"PRODUCT_SERVICE_URL":      cfg.Services.Products,
		"CART_SERVICE_URL":         cfg.Services.Cart,
		"ORDER_SERVICE_URL":        cfg.Services.Orders,
		"PAYMENT_SERVICE_URL":      cfg.Services.Payments,
		"NOTIFICATION_SERVICE_URL": cfg.Services.Notifications,
	})
}
