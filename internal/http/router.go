package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go.ngs.io/gefs-api/internal/observability"
	"go.ngs.io/gefs-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(svc *usecase.ForecastService, metrics *observability.Metrics, allowedOrigins []string, debug bool, log *zap.SugaredLogger) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if metrics != nil {
		router.Use(requestMetrics(metrics))
	}

	// Setup CORS middleware. An empty origin list allows all origins.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	handler := NewHandler(svc, log)

	// API v1 routes.
	v1 := router.Group("/v1")
	forecast := v1.Group("/forecast")
	forecast.GET("/timeseries", handler.GetTimeSeries)
	forecast.GET("/grid", handler.GetGrid)

	v1.GET("/locations", handler.GetLocations)
	v1.GET("/variables", handler.GetVariables)

	// Health check and metrics.
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records a counter and latency histogram per route.
func requestMetrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		outcome := "ok"
		switch status := c.Writer.Status(); {
		case status >= 500:
			outcome = "server_error"
		case status >= 400:
			outcome = "client_error"
		}
		m.Requests.WithLabelValues(endpoint, outcome).Inc()
		m.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
