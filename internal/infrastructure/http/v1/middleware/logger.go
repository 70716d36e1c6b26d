package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"almacen/pkg/logger"
)

// Logger logs one line per request with method, status and latency.
// Health probes are skipped to keep the log readable under liveness polling.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/health/") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, "query", query)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		log.WithContext(c.Request.Context()).Infow("http request", fields...)
	}
}
