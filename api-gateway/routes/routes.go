package routes

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/api-gateway/config"
	"github.com/yashrajoria/shopswift/api-gateway/utils"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
)

// RegisterAllRoutes maps each /api prefix to the service that owns it.
// Authentication stays with the services.
func RegisterAllRoutes(r *gin.Engine, fw *utils.Forwarder, svc config.Services) {
	proxy := func(prefix, target string) {
		h := fw.To(target)
		r.Any(prefix, h)
		r.Any(prefix+"/*any", hideInternal(h))
	}

	proxy("/api/auth", svc.Auth)
	proxy("/api/products", svc.Products)
	proxy("/api/cart", svc.Cart)
	proxy("/api/orders", svc.Orders)
	proxy("/api/payments", svc.Payments)
	proxy("/api/notifications", svc.Notifications)
}

// hideInternal keeps service-to-service routes unreachable from outside.
func hideInternal(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		rest := c.Param("any")
		if rest == "/internal" || strings.HasPrefix(rest, "/internal/") {
			apperrors.Respond(c, apperrors.NotFound("Not found"))
			return
		}
		next(c)
	}
}
