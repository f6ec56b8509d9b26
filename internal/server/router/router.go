package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/server/handlers"
	"github.com/mamadbah2/watercan/pkg/metrics"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Stock   *handlers.StockHandler
	Reports *handlers.ReportHandler
	Orders  *handlers.OrderHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(m))

	api := r.Group("/api")
	{
		api.GET("/stock", h.Stock.Get)
		api.PUT("/stock/update", h.Stock.Update)

		api.POST("/report-delivery", h.Reports.ReportDelivery)
		api.GET("/reports", h.Reports.List)
		api.GET("/reports/user/:phone", h.Reports.ListByPhone)
		api.GET("/activities", h.Reports.Activities)

		api.GET("/orders", h.Orders.List)
		api.POST("/orders", h.Orders.Create)
		api.GET("/orders/:id", h.Orders.Get)
		api.PUT("/orders/:id", h.Orders.Update)
		api.DELETE("/orders/:id", h.Orders.Delete)
		api.POST("/orders/:id/complete", h.Orders.Complete)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
