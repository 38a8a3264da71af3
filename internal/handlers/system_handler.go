package handlers

import (
	"context"
	"net/http"
	"time"

	"saasadmin/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SystemHandler 健康检查
type SystemHandler struct {
	db    *gorm.DB
	redis *redis.Client
	hub   *realtime.Hub
}

// NewSystemHandler redisClient 可为空
func NewSystemHandler(db *gorm.DB, redisClient *redis.Client, hub *realtime.Hub) *SystemHandler {
	return &SystemHandler{
		db:    db,
		redis: redisClient,
		hub:   hub,
	}
}

// Health 数据库不可用时返回503，Redis只影响登录限流，不影响整体状态
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}

	switch {
	case h.redis == nil:
		checks["redis"] = "disabled"
	case h.redis.Ping(ctx).Err() != nil:
		checks["redis"] = "down"
	default:
		checks["redis"] = "up"
	}

	body := gin.H{
		"status": "ok",
		"checks": checks,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if h.hub != nil {
		body["stream_clients"] = h.hub.ClientCount()
	}
	c.JSON(status, body)
}
