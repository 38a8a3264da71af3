package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// 条数限制配置
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ParseLimit 从 ?limit=N 解析返回条数，非法值使用默认值，超过上限时截断
func ParseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		return DefaultLimit
	}
	return ClampLimit(limit)
}

// ClampLimit 将条数约束在 [1, MaxLimit]
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
