// Package dbtest 测试用数据库，仅在 _test.go 中引用
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"saasadmin/internal/database"
	"saasadmin/pkg/config"

	"gorm.io/gorm"
)

var seq atomic.Int64

// Open 为单个测试创建独立的内存SQLite库并完成迁移
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: dsn})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
