package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/common/config"
	"github.com/yashrajoria/shopswift/services/common/logger"
	"github.com/yashrajoria/shopswift/services/common/middleware"
)

// Options shared by every service's HTTP stack.
type Options struct {
	Service        string
	Env            string
	AllowedOrigins string
	RequestTimeout time.Duration
	RatePerMinute  int
	RateBurst      int
	Metrics        middleware.MetricsRecorder
}

// OptionsFromEnv reads the common HTTP settings.
func OptionsFromEnv(service string) Options {
	return Options{
		Service:        service,
		Env:            config.GetEnv("APP_ENV", "development"),
		AllowedOrigins: config.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RequestTimeout: config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RatePerMinute:  config.GetEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateBurst:      config.GetEnvInt("RATE_LIMIT_BURST", 50),
	}
}

// InitObservability configures the global logger (tee'd to CloudWatch Logs when
// CLOUDWATCH_ENABLED=true) and returns the metrics client for the service.
// The returned client is nil when CloudWatch is off; its methods are nil-safe.
func InitObservability(ctx context.Context, opts *Options) *awspkg.MetricsClient {
	if !config.GetEnvBool("CLOUDWATCH_ENABLED", false) {
		logger.Initialize(opts.Env, opts.Service)
		return nil
	}

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		logger.Initialize(opts.Env, opts.Service)
		logger.Log.Warn("cloudwatch disabled: aws config unavailable", zap.Error(err))
		return nil
	}

	cw, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, config.GetEnv("CLOUDWATCH_LOG_GROUP", "/shopswift/services"), opts.Service)
	if err != nil {
		logger.Initialize(opts.Env, opts.Service)
		logger.Log.Warn("cloudwatch logs disabled", zap.Error(err))
	} else {
		logger.InitializeWithWriter(opts.Env, opts.Service, cw)
	}

	metrics := awspkg.NewMetricsClient(awsCfg, config.GetEnv("CLOUDWATCH_NAMESPACE", "ShopSwift"), true)
	opts.Metrics = metrics
	return metrics
}

// NewRouter returns a gin engine with the standard middleware chain and /health.
func NewRouter(opts Options, stop <-chan struct{}) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger.Log),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(opts.AllowedOrigins),
		middleware.MetricsMiddleware(opts.Metrics, opts.Service),
	)
	if opts.RatePerMinute > 0 {
		r.Use(middleware.RateLimitMiddleware(opts.RatePerMinute, opts.RateBurst, stop))
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.RequestTimeout(opts.RequestTimeout))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": opts.Service})
	})
	return r
}

// Run serves handler on port until SIGINT/SIGTERM, then drains for up to 5s
// and runs cleanup in order.
func Run(port string, handler http.Handler, cleanup ...func()) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}

	for _, fn := range cleanup {
		fn()
	}
	logger.Log.Info("server exited")
	logger.Sync()
}
