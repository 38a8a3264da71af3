package services

import (
	"context"
	"fmt"
	"time"

	"saasadmin/pkg/logger"
	"saasadmin/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// SessionCleanupScheduler 定时清理过期会话
type SessionCleanupScheduler struct {
	sessions *SessionService
	cron     *cron.Cron
	spec     string
	running  bool
}

// NewSessionCleanupScheduler spec 为cron表达式，如 "@every 15m"
func NewSessionCleanupScheduler(sessions *SessionService, spec string) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		sessions: sessions,
		cron:     cron.New(),
		spec:     spec,
	}
}

// Start 注册清理任务并启动调度器
func (s *SessionCleanupScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("无效的cron表达式 %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.running = true
	logger.GetLogger().Infof("Session cleanup scheduler started (spec=%s)", s.spec)
	return nil
}

// Stop 停止调度器并等待正在执行的任务结束
func (s *SessionCleanupScheduler) Stop() {
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	logger.GetLogger().Info("Session cleanup scheduler stopped")
}

// RunOnce 执行一次清理
func (s *SessionCleanupScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to delete expired sessions")
		return
	}
	if count > 0 {
		metrics.ExpiredSessionsPurged.Add(float64(count))
		logger.GetLogger().Infof("Deleted %d expired sessions", count)
	}
}
