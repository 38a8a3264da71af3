package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"
	"saasadmin/pkg/logger"

	"gorm.io/gorm"
)

type SettingService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewSettingService(db *gorm.DB, recorder ActivityRecorder) *SettingService {
	return &SettingService{
		db:       db,
		recorder: recorder,
	}
}

// List 配置列表，tenantID 为空时返回全部，0 表示全局配置
func (s *SettingService) List(ctx context.Context, tenantID *uint) ([]*models.Setting, error) {
	settings := make([]*models.Setting, 0)

	query := s.db.WithContext(ctx).Model(&models.Setting{})
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	if err := query.Order("tenant_id ASC").Order("key ASC").Find(&settings).Error; err != nil {
		return nil, translateDBError(err)
	}
	return settings, nil
}

func (s *SettingService) GetByID(ctx context.Context, id uint) (*models.Setting, error) {
	var setting models.Setting
	if err := s.db.WithContext(ctx).First(&setting, id).Error; err != nil {
		return nil, notFoundOr(err, "配置不存在")
	}
	return &setting, nil
}

// Upsert 按 (tenant_id, key) 新增或覆盖配置，created 表示是否新插入
// 并发插入同一个键导致唯一约束冲突时，重试一次走更新分支
func (s *SettingService) Upsert(ctx context.Context, actor *models.User, req UpsertSettingRequest) (*models.Setting, bool, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, false, err
	}

	tenantID := models.GlobalTenantID
	if req.TenantID != nil {
		tenantID = *req.TenantID
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, false, errors.Validation("配置键不能为空", "key")
	}

	var (
		setting *models.Setting
		created bool
		err     error
	)
	for attempt := 0; attempt < 2; attempt++ {
		setting, created, err = s.upsertOnce(ctx, actor, tenantID, key, req.Value)
		if err == nil || !stderrors.Is(err, errors.ErrConflict) || attempt > 0 {
			break
		}
		logger.GetLogger().WithField("key", key).Debug("Setting insert raced, retrying as update")
	}
	if err != nil {
		return nil, false, err
	}
	return setting, created, nil
}

func (s *SettingService) upsertOnce(ctx context.Context, actor *models.User, tenantID uint, key, value string) (*models.Setting, bool, error) {
	var setting models.Setting
	created := false

	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := checkTenantRef(tx, tenantRef(tenantID)); err != nil {
			return ActivityEntry{}, err
		}

		err := tx.Where("tenant_id = ? AND key = ?", tenantID, key).First(&setting).Error
		switch {
		case err == nil:
			setting.Value = value
			if err := tx.Save(&setting).Error; err != nil {
				return ActivityEntry{}, err
			}
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			setting = models.Setting{TenantID: tenantID, Key: key, Value: value}
			if err := tx.Create(&setting).Error; err != nil {
				return ActivityEntry{}, err
			}
			created = true
		default:
			return ActivityEntry{}, err
		}

		verb := models.VerbUpdated
		if created {
			verb = models.VerbCreated
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    tenantRef(setting.TenantID),
			EntityType:  models.EntitySetting,
			EntityID:    setting.ID,
			Verb:        verb,
			Description: fmt.Sprintf("设置 %s", describeSetting(&setting)),
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &setting, created, nil
}

// Update 修改配置值
func (s *SettingService) Update(ctx context.Context, actor *models.User, id uint, req UpdateSettingRequest) (*models.Setting, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if req.Value == nil {
		return nil, errors.Validation("配置值不能为空", "value")
	}

	var setting models.Setting
	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := tx.First(&setting, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "配置不存在")
		}
		setting.Value = *req.Value
		if err := tx.Save(&setting).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    tenantRef(setting.TenantID),
			EntityType:  models.EntitySetting,
			EntityID:    setting.ID,
			Verb:        models.VerbUpdated,
			Description: fmt.Sprintf("设置 %s", describeSetting(&setting)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (s *SettingService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	return withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		var setting models.Setting
		if err := tx.First(&setting, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "配置不存在")
		}
		if err := tx.Delete(&setting).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    tenantRef(setting.TenantID),
			EntityType:  models.EntitySetting,
			EntityID:    setting.ID,
			Verb:        models.VerbDeleted,
			Description: fmt.Sprintf("删除配置 %s", describeSetting(&setting)),
		}, nil
	})
}

func describeSetting(setting *models.Setting) string {
	if setting.IsGlobal() {
		return setting.Key
	}
	return fmt.Sprintf("%s（租户 #%d）", setting.Key, setting.TenantID)
}
