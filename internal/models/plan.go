package models

import "gorm.io/datatypes"

// Plan 订阅套餐，与租户无关
type Plan struct {
	BaseModel
	Name        string                      `json:"name" gorm:"unique;not null;size:100"`
	Description string                      `json:"description" gorm:"size:500"`
	Price       int64                       `json:"price" gorm:"not null"` // 最小货币单位（如：分）
	Currency    string                      `json:"currency" gorm:"not null;default:'USD';size:3"`
	Interval    string                      `json:"interval" gorm:"not null;default:'month';size:10"`
	Status      string                      `json:"status" gorm:"not null;default:'active';size:20;index"`
	Features    datatypes.JSONSlice[string] `json:"features"`
}

// TableName 表名
func (p *Plan) TableName() string {
	return "plans"
}

// 计费周期
const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// 套餐状态
const (
	PlanStatusActive   = "active"
	PlanStatusInactive = "inactive"
)
