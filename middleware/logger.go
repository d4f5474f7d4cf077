// middleware/logger.go

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/logger"
)

// RequestLog 按请求打一行访问日志
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		logger.Info("[%s] %s %d %s %v",
			c.Request.Method, path, c.Writer.Status(), c.ClientIP(), latency)
	}
}
