package middleware

import (
	"saasadmin/pkg/logger"
	"saasadmin/pkg/metrics"
	"saasadmin/pkg/ratelimit"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// LoginRateLimit 按客户端IP限制登录频率
// 限流器不可用（Redis故障）时放行，只记录告警
func LoginRateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), "login:"+c.ClientIP())
		if err != nil {
			logger.GetLogger().WithError(err).WithField("client_ip", c.ClientIP()).Warn("Login rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			metrics.LoginAttempts.WithLabelValues("throttled").Inc()
			response.TooManyRequests(c, "登录尝试过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
