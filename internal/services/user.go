package services

import (
	"context"
	"fmt"
	"strings"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewUserService(db *gorm.DB, recorder ActivityRecorder) *UserService {
	return &UserService{
		db:       db,
		recorder: recorder,
	}
}

// List 用户列表（按ID升序），不返回密码
func (s *UserService) List(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	users := make([]*models.User, 0)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, translateDBError(err)
	}
	return users, nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	return &user, nil
}

// Create 管理员创建用户
func (s *UserService) Create(ctx context.Context, actor *models.User, req CreateUserRequest) (*models.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: req.FullName,
		Role:     req.Role,
		TenantID: req.TenantID,
		Status:   req.Status,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.Internal("密码加密失败", err)
	}

	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := s.insert(tx, user); err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    user.TenantID,
			EntityType:  models.EntityUser,
			EntityID:    user.ID,
			Verb:        models.VerbCreated,
			Description: fmt.Sprintf("创建用户 %s", user.Username),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Register 自助注册，角色固定为 user，不属于任何租户；审计记录的操作人是新用户自己
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: req.FullName,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.Internal("密码加密失败", err)
	}

	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := s.insert(tx, user); err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     user.ID,
			EntityType:  models.EntityUser,
			EntityID:    user.ID,
			Verb:        models.VerbCreated,
			Description: fmt.Sprintf("用户 %s 注册", user.Username),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) insert(tx *gorm.DB, user *models.User) error {
	if err := s.checkUnique(tx, 0, user.Username, user.Email); err != nil {
		return err
	}
	if err := checkTenantRef(tx, user.TenantID); err != nil {
		return err
	}
	return tx.Omit(clause.Associations).Create(user).Error
}

// Update 修改用户，非管理员只能修改自己的非特权字段
func (s *UserService) Update(ctx context.Context, actor *models.User, id uint, req UpdateUserRequest) (*models.User, error) {
	if err := AuthorizeUserUpdate(actor, id, &req); err != nil {
		return nil, err
	}

	var user models.User
	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := tx.First(&user, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "用户不存在")
		}

		changed := make([]string, 0)
		username, email := user.Username, user.Email
		if req.Username != nil {
			username = strings.TrimSpace(*req.Username)
		}
		if req.Email != nil {
			email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if username != user.Username || email != user.Email {
			if err := s.checkUnique(tx, user.ID, username, email); err != nil {
				return ActivityEntry{}, err
			}
		}
		if username != user.Username {
			user.Username = username
			changed = append(changed, "username")
		}
		if email != user.Email {
			user.Email = email
			changed = append(changed, "email")
		}
		if req.FullName != nil && *req.FullName != user.FullName {
			user.FullName = *req.FullName
			changed = append(changed, "full_name")
		}
		if req.Password != nil {
			if err := user.SetPassword(*req.Password); err != nil {
				return ActivityEntry{}, errors.Internal("密码加密失败", err)
			}
			changed = append(changed, "password")
		}
		if req.Role != nil && *req.Role != user.Role {
			user.Role = *req.Role
			changed = append(changed, "role")
		}
		if req.Status != nil && *req.Status != user.Status {
			user.Status = *req.Status
			changed = append(changed, "status")
		}
		if req.TenantID != nil {
			tenantID := tenantRef(*req.TenantID)
			if err := checkTenantRef(tx, tenantID); err != nil {
				return ActivityEntry{}, err
			}
			user.TenantID = tenantID
			changed = append(changed, "tenant_id")
		}

		if err := tx.Omit(clause.Associations).Save(&user).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    user.TenantID,
			EntityType:  models.EntityUser,
			EntityID:    user.ID,
			Verb:        models.VerbUpdated,
			Description: fmt.Sprintf("更新用户 %s", user.Username),
			Details:     map[string]interface{}{"fields": changed},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete 删除用户及其会话
func (s *UserService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := AuthorizeUserDelete(actor, id); err != nil {
		return err
	}

	return withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "用户不存在")
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return ActivityEntry{}, err
		}
		if err := tx.Delete(&user).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    user.TenantID,
			EntityType:  models.EntityUser,
			EntityID:    user.ID,
			Verb:        models.VerbDeleted,
			Description: fmt.Sprintf("删除用户 %s", user.Username),
		}, nil
	})
}

// checkUnique 用户名、邮箱唯一性检查，excludeID 为当前用户
func (s *UserService) checkUnique(tx *gorm.DB, excludeID uint, username, email string) error {
	taken, err := exists(tx, &models.User{}, "username = ? AND id <> ?", username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.Conflict("用户名已存在")
	}
	taken, err = exists(tx, &models.User{}, "email = ? AND id <> ?", email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.Conflict("邮箱已被使用")
	}
	return nil
}

// checkTenantRef 引用的租户必须存在
func checkTenantRef(tx *gorm.DB, tenantID *uint) error {
	if tenantID == nil {
		return nil
	}
	ok, err := exists(tx, &models.Tenant{}, "id = ?", *tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.InvalidReference("租户不存在", "tenant_id")
	}
	return nil
}
