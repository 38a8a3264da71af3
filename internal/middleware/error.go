package middleware

import (
	"runtime/debug"

	"saasadmin/pkg/logger"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler 错误处理中间件 - 主要处理panic
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.GetLogger().WithFields(logrus.Fields{
					"request_id": c.GetString(RequestIDKey),
					"path":       c.Request.URL.Path,
					"stack":      string(debug.Stack()),
				}).Errorf("Panic recovered: %v", err)
				response.ServerError(c, "服务器内部错误")
				c.Abort()
			}
		}()

		c.Next()
	}
}
