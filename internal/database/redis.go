package database

import (
	"context"
	"fmt"

	"saasadmin/pkg/config"

	"github.com/go-redis/redis/v8"
)

var redisClient *redis.Client

// InitializeRedis 创建全局Redis客户端并检查连通性
func InitializeRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("连接Redis失败: %w", err)
	}
	redisClient = client
	return nil
}

// GetRedis 获取全局Redis客户端
func GetRedis() *redis.Client {
	return redisClient
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
