package services

import (
	"context"

	"saasadmin/internal/models"
	"saasadmin/pkg/logger"
	"saasadmin/pkg/metrics"
	"saasadmin/pkg/pagination"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Broadcaster 已提交审计记录的推送目标（本地Hub或Redis转发器）
type Broadcaster interface {
	Broadcast(activity *models.Activity)
}

// ActivityService 审计日志服务
type ActivityService struct {
	db          *gorm.DB
	broadcaster Broadcaster
}

// NewActivityService 创建审计服务，broadcaster 可为空
func NewActivityService(db *gorm.DB, broadcaster Broadcaster) *ActivityService {
	return &ActivityService{
		db:          db,
		broadcaster: broadcaster,
	}
}

// Record 写入一条审计记录，必须传入变更所在的事务
func (s *ActivityService) Record(tx *gorm.DB, entry ActivityEntry) (*models.Activity, error) {
	activity := &models.Activity{
		UserID:      entry.ActorID,
		TenantID:    entry.TenantID,
		Action:      models.ActionCode(entry.EntityType, entry.Verb),
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Description: entry.Description,
	}
	if len(entry.Details) > 0 {
		activity.Details = datatypes.JSONMap(entry.Details)
	}

	if err := tx.Create(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

// Publish 提交后的通知：计数并推送给在线订阅者
func (s *ActivityService) Publish(activity *models.Activity) {
	if activity == nil {
		return
	}
	metrics.ActivitiesRecorded.WithLabelValues(activity.Action).Inc()

	logger.GetLogger().WithFields(logrus.Fields{
		"activity_id": activity.ID,
		"action":      activity.Action,
		"user_id":     activity.UserID,
	}).Debug("Activity recorded")

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(activity)
	}
}

// List 最新的审计记录，limit 超出范围时取默认值或上限
func (s *ActivityService) List(ctx context.Context, limit int) ([]*models.Activity, error) {
	activities := make([]*models.Activity, 0)
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.ClampLimit(limit)).
		Find(&activities).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return activities, nil
}
