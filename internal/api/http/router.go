package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/ComputeEngine/internal/api/middleware"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
)

// RouterConfig selects the middleware NewRouter installs. Nil tracer or
// metrics skip the matching middleware.
type RouterConfig struct {
	Tracer       *tracing.Tracer
	Metrics      *monitoring.Metrics
	RateLimit    *middleware.RateLimitConfig
	MaxBodyBytes int64
	Development  bool
}

// NewRouter builds the gateway: /engine/*, /health, /metrics, /metrics/json.
// Every response carries an X-Request-ID that is also sent to the engine.
func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Tracer != nil {
		router.Use(tracing.HTTPMiddleware(cfg.Tracer))
	}
	if cfg.Metrics != nil {
		router.Use(monitoring.Middleware(cfg.Metrics))
	}
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit != nil {
		router.Use(middleware.RateLimit(*cfg.RateLimit))
	}
	if cfg.MaxBodyBytes > 0 {
		router.Use(maxBody(cfg.MaxBodyBytes))
	}

	router.GET("/health", h.Health)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	router.GET("/metrics/json", h.MetricsJSON)
	h.Register(router)

	return router
}

func maxBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
