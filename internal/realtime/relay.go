package realtime

import (
	"context"
	"fmt"
	"time"

	"saasadmin/internal/models"
	"saasadmin/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RedisRelay 通过Redis频道在多个实例间转发审计事件
// 发布端写入频道，所有实例（包括自己）订阅后交给本地Hub广播
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

// NewRedisRelay 创建转发器，频道名为 {prefix}:activities
func NewRedisRelay(client *redis.Client, prefix string, hub *Hub) *RedisRelay {
	if prefix == "" {
		prefix = "saas"
	}
	return &RedisRelay{
		client:  client,
		channel: fmt.Sprintf("%s:activities", prefix),
		hub:     hub,
	}
}

// Channel 频道名
func (r *RedisRelay) Channel() string {
	return r.channel
}

// Broadcast 发布到Redis，失败时退化为仅本地广播
func (r *RedisRelay) Broadcast(activity *models.Activity) {
	data, err := encodeActivity(activity)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to encode activity event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		logger.GetLogger().WithError(err).Warn("Failed to publish activity to redis, broadcasting locally")
		r.hub.Send(data)
	}
}

// Start 订阅频道，确认订阅成功后在后台转发，ctx 取消时退出
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("订阅频道 %s 失败: %w", r.channel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.hub.Send([]byte(msg.Payload))
			}
		}
	}()

	logger.GetLogger().WithField("channel", r.channel).Info("Activity relay subscribed")
	return nil
}
