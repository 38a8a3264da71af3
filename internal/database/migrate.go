package database

import (
	"saasadmin/internal/models"
	"saasadmin/pkg/logger"

	"gorm.io/gorm"
)

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	// 租户必须先于用户创建（users.tenant_id 外键）
	err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Session{},
		&models.Role{},
		&models.Permission{},
		&models.Plan{},
		&models.Subscription{},
		&models.Setting{},
		&models.Activity{},
	)
	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
