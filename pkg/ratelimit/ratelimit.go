package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter 基于Redis的固定窗口限流器，多实例部署时共享计数
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewLimiter 创建限流器，limit 为窗口内允许的次数
func NewLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	if prefix == "" {
		prefix = "saas"
	}
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (l *Limiter) key(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", l.prefix, key)
}

// Allow 计数一次并返回是否仍在限额内
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("限流计数失败: %w", err)
	}

	// 新窗口（或过期时间丢失）时设置过期
	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("设置限流窗口失败: %w", err)
		}
	}

	return incr.Val() <= int64(l.limit), nil
}

// Reset 清除计数，用于登录成功后
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}
