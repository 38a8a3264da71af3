package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity 审计记录，只追加不修改
// user_id / tenant_id 只是弱引用，不建外键，删除用户或租户不受审计记录影响
type Activity struct {
	ID          uint              `json:"id" gorm:"primarykey"`
	UserID      uint              `json:"user_id" gorm:"not null;index"`
	TenantID    *uint             `json:"tenant_id" gorm:"index"`
	Action      string            `json:"action" gorm:"not null;size:50;index"`
	EntityType  string            `json:"entity_type" gorm:"size:30"`
	EntityID    uint              `json:"entity_id"`
	Description string            `json:"description" gorm:"size:500"`
	Details     datatypes.JSONMap `json:"details,omitempty"`
	CreatedAt   time.Time         `json:"created_at" gorm:"index"`
}

// TableName 表名
func (a *Activity) TableName() string {
	return "activities"
}

// 审计实体类型
const (
	EntityUser         = "user"
	EntityTenant       = "tenant"
	EntityPlan         = "plan"
	EntitySubscription = "subscription"
	EntitySetting      = "setting"
	EntityRole         = "role"
	EntityPermission   = "permission"
)

// 审计动作
const (
	VerbCreated = "created"
	VerbUpdated = "updated"
	VerbDeleted = "deleted"
)

// ActionCode 生成点分动作码，如 user.created
func ActionCode(entity, verb string) string {
	return entity + "." + verb
}
