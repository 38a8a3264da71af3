package models

import (
	"time"
)

// BaseModel 公共字段，ID 由数据库自增分配，记录一律物理删除
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Persisted 是否已写入数据库
func (m *BaseModel) Persisted() bool {
	return m != nil && m.ID != 0
}
