package delivery

import (
	"time"

	"adscout/internal/delivery/middleware"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics, gatherer prometheus.Gatherer, timeout time.Duration) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
		gatherer: gatherer,
		timeout:  timeout,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(r.timeout))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)

		v1.POST("/search", r.handlers.Search)
		v1.POST("/normalize", r.handlers.Normalize)

		collections := v1.Group("/collections")
		{
			collections.GET("", r.handlers.ListCollections)
			collections.POST("", r.handlers.CreateCollection)
			collections.DELETE("/:name", r.handlers.DeleteCollection)

			collections.GET("/:name/ads", r.handlers.ListAds)
			collections.POST("/:name/ads", r.handlers.SaveAd)
			collections.DELETE("/:name/ads/:id", r.handlers.DeleteAd)

			collections.POST("/:name/analyze", r.handlers.Analyze)
			collections.POST("/:name/generate", r.handlers.Generate)
			collections.GET("/:name/images", r.handlers.ListGeneratedImages)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler(r.gatherer))

	return router
}
