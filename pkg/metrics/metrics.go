package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter HTTP请求总数
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration HTTP请求耗时
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ActivitiesRecorded 已提交的审计记录，按动作码统计
	ActivitiesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_recorded_total",
			Help: "Total number of committed activity entries by action",
		},
		[]string{"action"},
	)

	// LoginAttempts 登录尝试，result 为 success / failure / throttled
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// ExpiredSessionsPurged 定时清理删除的过期会话数
	ExpiredSessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_purged_total",
			Help: "Total number of expired sessions removed by the cleanup job",
		},
	)

	registerOnce sync.Once
)

// Register 注册所有指标，可重复调用
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			ActivitiesRecorded,
			LoginAttempts,
			ExpiredSessionsPurged,
		)
	})
}

// Middleware 记录请求次数和耗时，path 使用路由模板避免标签爆炸
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		RequestCounter.WithLabelValues(c.Request.Method, path, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler Prometheus 抓取入口
func Handler() http.Handler {
	return promhttp.Handler()
}
