package models

// Tenant 租户模型 - 贫血模型，只包含数据结构
type Tenant struct {
	BaseModel
	Name   string `json:"name" gorm:"unique;not null;size:100"`
	Domain string `json:"domain" gorm:"unique;not null;size:255"`
	Status string `json:"status" gorm:"not null;default:'active';size:20;index"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
	TenantStatusTrial    = "trial"
)
