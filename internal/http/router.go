package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-relay/internal/metrics"
	"trading-relay/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas del relay.
// jwtSvc y m son opcionales.
func NewRouter(
	logger *zap.Logger,
	allowedOrigins []string,
	wsH *WSHandler,
	healthH *HealthHandler,
	jwtSvc *service.JWTService,
	m *metrics.Metrics,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y CORS.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(allowedOrigins))

	if jwtSvc != nil {
		r.GET("/ws", JWTAuthMiddleware(jwtSvc), wsH.Serve)
	} else {
		r.GET("/ws", wsH.Serve)
	}
	r.GET("/health", healthH.Check)

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
