package utils

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/logger"
)

var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"trailers":            true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

// Forwarder relays gateway requests to backend services unchanged in path.
type Forwarder struct {
	client *http.Client
}

func NewForwarder(timeout time.Duration) *Forwarder {
	return &Forwarder{client: &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// To returns a handler forwarding to targetBase + the original path and query.
func (f *Forwarder) To(targetBase string) gin.HandlerFunc {
	targetBase = strings.TrimRight(targetBase, "/")
	return func(c *gin.Context) {
		f.forward(c, targetBase)
	}
}

func (f *Forwarder) forward(c *gin.Context, targetBase string) {
	ctx := c.Request.Context()
	targetURL := targetBase + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, c.Request.Method, targetURL, c.Request.Body)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	req.ContentLength = c.Request.ContentLength

	copyHeaders(req.Header, c.Request.Header, false)
	if rid := c.GetString(logger.RequestIDKey); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	if ip, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		if prior := c.Request.Header.Get("X-Forwarded-For"); prior != "" {
			ip = prior + ", " + ip
		}
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			logger.Warn(ctx, "upstream timed out", zap.String("url", targetURL))
			apperrors.Respond(c, apperrors.UpstreamTimeout("Service timed out", err))
			return
		}
		logger.Error(ctx, "failed to forward request", err, zap.String("url", targetURL))
		apperrors.Respond(c, apperrors.Upstream("Service unavailable", err))
		return
	}
	defer resp.Body.Close()

	copyHeaders(c.Writer.Header(), resp.Header, true)
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logger.Warn(ctx, "failed to copy response body", zap.String("url", targetURL), zap.Error(err))
	}
}

// copyHeaders drops hop-by-hop headers, and CORS headers on responses since
// the gateway answers CORS itself.
func copyHeaders(dst, src http.Header, response bool) {
	for k, v := range src {
		lower := strings.ToLower(k)
		if hopByHop[lower] {
			continue
		}
		if response && strings.HasPrefix(lower, "access-control-") {
			continue
		}
		for _, vv := range v {
			dst.Add(k, vv)
		}
	}
}
