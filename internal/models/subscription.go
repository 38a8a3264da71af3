package models

import "time"

// Subscription 租户与套餐的绑定关系
// 租户、套餐引用只在写入时由服务层校验，没有数据库外键
type Subscription struct {
	BaseModel
	TenantID    uint       `json:"tenant_id" gorm:"not null;index"`
	PlanID      uint       `json:"plan_id" gorm:"not null;index"`
	Status      string     `json:"status" gorm:"not null;default:'active';size:20;index"`
	StartDate   time.Time  `json:"start_date" gorm:"not null"`
	EndDate     *time.Time `json:"end_date"`
	RenewalDate *time.Time `json:"renewal_date"`
}

// TableName 表名
func (s *Subscription) TableName() string {
	return "subscriptions"
}

// 订阅状态：pending -> active -> {canceled, past_due}; past_due -> {active, canceled}
// 状态流转不做强制校验
const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)
