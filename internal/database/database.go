package database

import (
	"fmt"
	"time"

	"saasadmin/pkg/config"
	"saasadmin/pkg/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize 初始化全局数据库连接
func Initialize(cfg *config.Config) error {
	db, err := Open(cfg.Database)
	if err != nil {
		return err
	}
	DB = db
	logger.GetLogger().Infof("Database connected (driver=%s)", cfg.Database.Driver)
	return nil
}

// Open 按驱动打开数据库连接
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		// 唯一约束冲突翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch cfg.Driver {
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		db, err := gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("连接PostgreSQL失败: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil

	case "sqlite":
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("打开SQLite失败: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite 单写者，串行化连接避免 database is locked
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// sqliteDSN 打开外键约束
func sqliteDSN(path string) string {
	sep := "?"
	for _, r := range path {
		if r == '?' {
			sep = "&"
			break
		}
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// GetDB 获取全局数据库连接
func GetDB() *gorm.DB {
	return DB
}

// Close 关闭数据库连接
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
