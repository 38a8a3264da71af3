package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoleService 角色权限矩阵管理
type RoleService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewRoleService(db *gorm.DB, recorder ActivityRecorder) *RoleService {
	return &RoleService{
		db:       db,
		recorder: recorder,
	}
}

func (s *RoleService) List(ctx context.Context) ([]*models.Role, error) {
	roles := make([]*models.Role, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, translateDBError(err)
	}
	return roles, nil
}

func (s *RoleService) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, notFoundOr(err, "角色不存在")
	}
	return &role, nil
}

// PermissionsFor 按角色名查询权限矩阵，没有配置时返回空列表
func (s *RoleService) PermissionsFor(ctx context.Context, roleName string) ([]models.ResourcePermission, error) {
	var role models.Role
	err := s.db.WithContext(ctx).Where("name = ?", roleName).First(&role).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return []models.ResourcePermission{}, nil
	}
	if err != nil {
		return nil, translateDBError(err)
	}
	if role.Permissions == nil {
		return []models.ResourcePermission{}, nil
	}
	return role.Permissions, nil
}

func (s *RoleService) Create(ctx context.Context, actor *models.User, req CreateRoleRequest) (*models.Role, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	permissions, err := normalizePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Permissions: datatypes.JSONSlice[models.ResourcePermission](permissions),
	}

	err = withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := s.checkUnique(tx, 0, role.Name); err != nil {
			return ActivityEntry{}, err
		}
		if err := tx.Create(role).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityRole,
			EntityID:    role.ID,
			Verb:        models.VerbCreated,
			Description: fmt.Sprintf("创建角色 %s", role.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, actor *models.User, id uint, req UpdateRoleRequest) (*models.Role, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	var permissions []models.ResourcePermission
	if req.Permissions != nil {
		var err error
		if permissions, err = normalizePermissions(*req.Permissions); err != nil {
			return nil, err
		}
	}

	var role models.Role
	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := tx.First(&role, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "角色不存在")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name != role.Name {
				if err := s.checkUnique(tx, role.ID, name); err != nil {
					return ActivityEntry{}, err
				}
				role.Name = name
			}
		}
		if req.Description != nil {
			role.Description = *req.Description
		}
		if req.Permissions != nil {
			role.Permissions = datatypes.JSONSlice[models.ResourcePermission](permissions)
		}

		if err := tx.Save(&role).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityRole,
			EntityID:    role.ID,
			Verb:        models.VerbUpdated,
			Description: fmt.Sprintf("更新角色 %s", role.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	return withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		var role models.Role
		if err := tx.First(&role, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "角色不存在")
		}
		if err := tx.Delete(&role).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			EntityType:  models.EntityRole,
			EntityID:    role.ID,
			Verb:        models.VerbDeleted,
			Description: fmt.Sprintf("删除角色 %s", role.Name),
		}, nil
	})
}

func (s *RoleService) checkUnique(tx *gorm.DB, excludeID uint, name string) error {
	taken, err := exists(tx, &models.Role{}, "name = ? AND id <> ?", name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.Conflict("角色名称已存在")
	}
	return nil
}

// normalizePermissions 资源必须是已知资源且不能重复
func normalizePermissions(permissions []models.ResourcePermission) ([]models.ResourcePermission, error) {
	known := make(map[string]struct{}, len(models.Resources))
	for _, r := range models.Resources {
		known[r] = struct{}{}
	}

	result := make([]models.ResourcePermission, 0, len(permissions))
	seen := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		p.Resource = strings.ToLower(strings.TrimSpace(p.Resource))
		if _, ok := known[p.Resource]; !ok {
			return nil, errors.Validation(fmt.Sprintf("未知的资源: %s", p.Resource), "permissions")
		}
		if _, dup := seen[p.Resource]; dup {
			return nil, errors.Validation(fmt.Sprintf("资源重复: %s", p.Resource), "permissions")
		}
		seen[p.Resource] = struct{}{}
		result = append(result, p)
	}
	return result, nil
}
