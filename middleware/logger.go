package middleware

import (
	"net/http"
	"time"

	"repairhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinZapLogger logs each request once it has been handled and makes a
// request-scoped logger available to handlers.
func GinZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Set(utils.CtxLogger, logger.With(zap.String("method", c.Request.Method), zap.String("path", path)))

		c.Next()

		statusCode := c.Writer.Status()
		fields := []zapcore.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			fields = append(fields, zap.String("error", errorMessage))
		}

		switch {
		case statusCode >= http.StatusInternalServerError:
			logger.Error("Request handled", fields...)
		case statusCode >= http.StatusBadRequest:
			logger.Warn("Request handled", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}
