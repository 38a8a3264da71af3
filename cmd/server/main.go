package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saasadmin/internal/database"
	"saasadmin/internal/realtime"
	"saasadmin/internal/router"
	"saasadmin/internal/services"
	"saasadmin/pkg/config"
	"saasadmin/pkg/jwt"
	"saasadmin/pkg/logger"
	"saasadmin/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting SaaS admin server...")

	// 初始化数据库
	if err := database.Initialize(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			appLogger.Error("Failed to close database:", err)
		}
	}()
	db := database.GetDB()

	if err := database.Migrate(db); err != nil {
		appLogger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := seedData(db, cfg.Seed); err != nil {
		appLogger.Fatalf("Failed to initialize seed data: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis 可选：不可用时登录不限流，审计推送只在本实例内广播
	hub := realtime.NewHub()
	defer hub.Close()

	deps := router.Dependencies{
		Config: cfg,
		DB:     db,
		JWT:    jwt.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.TokenTTL()),
		Hub:    hub,
	}

	if err := database.InitializeRedis(cfg); err != nil {
		appLogger.Warnf("Redis unavailable, continuing without rate limiting and cross-instance streaming: %v", err)
	} else {
		defer func() {
			if err := database.CloseRedis(); err != nil {
				appLogger.Error("Failed to close Redis:", err)
			}
		}()
		redisClient := database.GetRedis()
		deps.Redis = redisClient
		deps.Limiter = ratelimit.NewLimiter(redisClient, cfg.Redis.Prefix, cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow)

		relay := realtime.NewRedisRelay(redisClient, cfg.Redis.Prefix, hub)
		if err := relay.Start(ctx); err != nil {
			appLogger.Errorf("Failed to start activity relay: %v", err)
		} else {
			deps.Broadcaster = relay
		}
	}

	// 过期会话清理
	cleanup := services.NewSessionCleanupScheduler(services.NewSessionService(db, deps.JWT), cfg.Session.CleanupSpec)
	if err := cleanup.Start(); err != nil {
		// 不影响主服务启动
		appLogger.Errorf("Failed to start session cleanup scheduler: %v", err)
	}
	defer cleanup.Stop()

	r := router.SetupRouter(deps)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Server started on port %s", cfg.Server.Port)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown:", err)
	}
	appLogger.Info("Server exited")
}
