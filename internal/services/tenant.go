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

type TenantService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewTenantService(db *gorm.DB, recorder ActivityRecorder) *TenantService {
	return &TenantService{
		db:       db,
		recorder: recorder,
	}
}

// List 租户列表
func (s *TenantService) List(ctx context.Context, status string) ([]*models.Tenant, error) {
	tenants := make([]*models.Tenant, 0)

	query := s.db.WithContext(ctx).Model(&models.Tenant{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("id ASC").Find(&tenants).Error; err != nil {
		return nil, translateDBError(err)
	}
	return tenants, nil
}

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, id).Error; err != nil {
		return nil, notFoundOr(err, "租户不存在")
	}
	return &tenant, nil
}

// Create 创建租户
func (s *TenantService) Create(ctx context.Context, actor *models.User, req CreateTenantRequest) (*models.Tenant, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		Name:   strings.TrimSpace(req.Name),
		Domain: strings.ToLower(strings.TrimSpace(req.Domain)),
		Status: req.Status,
	}
	if tenant.Status == "" {
		tenant.Status = models.TenantStatusActive
	}

	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := s.checkUnique(tx, 0, tenant.Name, tenant.Domain); err != nil {
			return ActivityEntry{}, err
		}
		if err := tx.Create(tenant).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    &tenant.ID,
			EntityType:  models.EntityTenant,
			EntityID:    tenant.ID,
			Verb:        models.VerbCreated,
			Description: fmt.Sprintf("创建租户 %s", tenant.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// Update 更新租户
func (s *TenantService) Update(ctx context.Context, actor *models.User, id uint, req UpdateTenantRequest) (*models.Tenant, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	err := withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		if err := tx.First(&tenant, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "租户不存在")
		}

		name, domain := tenant.Name, tenant.Domain
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
		}
		if req.Domain != nil {
			domain = strings.ToLower(strings.TrimSpace(*req.Domain))
		}
		if name != tenant.Name || domain != tenant.Domain {
			if err := s.checkUnique(tx, tenant.ID, name, domain); err != nil {
				return ActivityEntry{}, err
			}
		}
		tenant.Name = name
		tenant.Domain = domain
		if req.Status != nil {
			tenant.Status = *req.Status
		}

		if err := tx.Save(&tenant).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    &tenant.ID,
			EntityType:  models.EntityTenant,
			EntityID:    tenant.ID,
			Verb:        models.VerbUpdated,
			Description: fmt.Sprintf("更新租户 %s", tenant.Name),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Delete 删除租户，存在用户时拒绝
// 检查与删除在同一事务内并锁定租户行；users.tenant_id 的外键作为最后一道保护
func (s *TenantService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	return withAudit(ctx, s.db, s.recorder, func(tx *gorm.DB) (ActivityEntry, error) {
		var tenant models.Tenant
		if err := lockForUpdate(tx).First(&tenant, id).Error; err != nil {
			return ActivityEntry{}, notFoundOr(err, "租户不存在")
		}

		var userCount int64
		if err := tx.Model(&models.User{}).Where("tenant_id = ?", tenant.ID).Count(&userCount).Error; err != nil {
			return ActivityEntry{}, err
		}
		if userCount > 0 {
			return ActivityEntry{}, errors.Conflict(fmt.Sprintf("租户下仍有 %d 个用户，无法删除", userCount))
		}

		if err := tx.Delete(&tenant).Error; err != nil {
			return ActivityEntry{}, err
		}
		return ActivityEntry{
			ActorID:     actor.ID,
			TenantID:    &tenant.ID,
			EntityType:  models.EntityTenant,
			EntityID:    tenant.ID,
			Verb:        models.VerbDeleted,
			Description: fmt.Sprintf("删除租户 %s", tenant.Name),
		}, nil
	})
}

func (s *TenantService) checkUnique(tx *gorm.DB, excludeID uint, name, domain string) error {
	taken, err := exists(tx, &models.Tenant{}, "name = ? AND id <> ?", name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.Conflict("租户名称已存在")
	}
	taken, err = exists(tx, &models.Tenant{}, "domain = ? AND id <> ?", domain, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.Conflict("租户域名已存在")
	}
	return nil
}

// lockForUpdate 行锁，SQLite 整库串行写不需要也不支持 FOR UPDATE
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
