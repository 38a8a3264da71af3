package services

import (
	"context"
	"fmt"
	"strings"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"

	"gorm.io/gorm"
)

// PermissionService 权限目录管理
type PermissionService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewPermissionService(db *gorm.DB, recorder ActivityRecorder) *PermissionService {
	return &PermissionService{
		db:       db,
		recorder: recorder,
	}
}

// List 按名称排序
func (s *PermissionService) List(ctx context.Context) ([]*models.Permission, error) {
	permissions := make([]*models.Permission, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&permissions).Error; err != nil {
		return nil, translateDBError(err)
	}
	return permissions, nil
}

// GetByID 根据ID获取权限
func (s *PermissionService) GetByID(ctx context.Context, id uint) (*models.Permission, error) {
	var permission models.Permission
	if err := s.db.WithContext(ctx).First(&permission, id).Error; err != nil {
		return nil, notFoundOr(err, "权限不存在")
	}
	return &permission, nil
}

func (s *PermissionService) Create(ctx context.Context, actor *models.User, req CreatePermissionRequest) (*models.Permission, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	permission := &models.Permission{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}

	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := s.checkUnique(tx, 0, permission.Name); err != nil {
			return ActivityEntry{}, err
		}
		if err := tx.Create(permission).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityPermission,
			EntityID:    permission.ID,
			Verb:        models.VerbCreated,
			Description: fmt.Sprintf("创建权限 %s", permission.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return permission, nil
}

func (s *PermissionService) Update(ctx context.Context, actor *models.User, id uint, req UpdatePermissionRequest) (*models.Permission, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var permission models.Permission
	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := tx.First(&permission, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "权限不存在")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name != permission.Name {
				if err := s.checkUnique(tx, permission.ID, name); err != nil {
					return ActivityEntry{}, err
				}
				permission.Name = name
			}
		}
		if req.Description != nil {
			permission.Description = *req.Description
		}

		if err := tx.Save(&permission).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityPermission,
			EntityID:    permission.ID,
			Verb:        models.VerbUpdated,
			Description: fmt.Sprintf("更新权限 %s", permission.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (s *PermissionService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	return withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		var permission models.Permission
		if err := tx.First(&permission, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "权限不存在")
		}
		if err := tx.Delete(&permission).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityPermission,
			EntityID:    permission.ID,
			Verb:        models.VerbDeleted,
			Description: fmt.Sprintf("删除权限 %s", permission.Name),
		}, nil
	})
}

func (s *PermissionService) checkUnique(tx *gorm.DB, excludeID uint, name string) error {
	taken, err := exists(tx, &models.Permission{}, "name = ? AND id <> ?", name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.Conflict("权限名称已存在")
	}
	return nil
}
