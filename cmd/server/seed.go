package main

import (
	stderrors "errors"
	"fmt"

	"saasadmin/internal/models"
	"saasadmin/pkg/config"
	"saasadmin/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据，可重复执行
func seedData(db *gorm.DB, cfg config.SeedConfig) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	// 1. 默认角色及权限矩阵
	if err := createDefaultRoles(db); err != nil {
		return fmt.Errorf("创建默认角色失败: %w", err)
	}

	// 2. 默认管理员用户
	if err := createDefaultAdmin(db, cfg); err != nil {
		return fmt.Errorf("创建默认管理员失败: %w", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// fullAccess 对所有资源拥有全部操作
func fullAccess() []models.ResourcePermission {
	perms := make([]models.ResourcePermission, 0, len(models.Resources))
	for _, r := range models.Resources {
		perms = append(perms, models.ResourcePermission{Resource: r, Create: true, Read: true, Update: true, Delete: true})
	}
	return perms
}

// readOnly 对所有资源只读，extra 中的资源额外允许更新
func readOnly(extra ...string) []models.ResourcePermission {
	perms := make([]models.ResourcePermission, 0, len(models.Resources))
	for _, r := range models.Resources {
		p := models.ResourcePermission{Resource: r, Read: true}
		for _, e := range extra {
			if e == r {
				p.Update = true
			}
		}
		perms = append(perms, p)
	}
	return perms
}

func defaultRoles() []models.Role {
	return []models.Role{
		{Name: models.RoleAdmin, Description: "系统管理员，拥有全部权限", Permissions: fullAccess()},
		{Name: models.RoleEditor, Description: "编辑者，可查看全部资源并维护个人资料", Permissions: readOnly(models.ResourceUsers)},
		{Name: models.RoleUser, Description: "普通用户，只读访问", Permissions: readOnly()},
	}
}

// createDefaultRoles 创建缺失的默认角色，已存在的不覆盖
func createDefaultRoles(db *gorm.DB) error {
	for _, role := range defaultRoles() {
		var count int64
		if err := db.Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		role := role
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("创建角色 %s 失败: %w", role.Name, err)
		}
		logger.GetLogger().Infof("默认角色 %s 创建成功", role.Name)
	}
	return nil
}

// createDefaultAdmin 未配置密码时跳过
func createDefaultAdmin(db *gorm.DB, cfg config.SeedConfig) error {
	if cfg.AdminPassword == "" {
		logger.GetLogger().Info("未配置 SEED_ADMIN_PASSWORD，跳过创建默认管理员")
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		logger.GetLogger().Info("默认管理员已存在，跳过创建")
		return nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &models.User{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		FullName: "系统管理员",
		Role:     models.RoleAdmin,
		Status:   models.UserStatusActive,
	}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		return err
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.GetLogger().Infof("默认管理员 %s 创建成功", admin.Username)
	return nil
}
