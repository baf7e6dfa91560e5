package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/faktura/pkg/correlation"
	"go.uber.org/zap"
)

const headerCorrelationID = "X-Correlation-ID"

// CorrelationMiddleware accepts an inbound correlation id or mints one, and
// echoes it on the response.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if incoming := c.GetHeader(headerCorrelationID); incoming != "" {
			ctx = correlation.ContextWithCorrelationID(ctx, incoming)
		}
		ctx, cid := correlation.EnsureCorrelationID(ctx)

		c.Request = c.Request.WithContext(ctx)
		c.Header(headerCorrelationID, cid)
		c.Next()
	}
}

func LoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("correlation_id", correlation.ExtractCorrelationID(c.Request.Context())),
		}

		if len(c.Errors) > 0 {
			log.Warn("request", append(fields, zap.String("error", c.Errors.Last().Error()))...)
			return
		}
		log.Info("request", fields...)
	}
}
