package services

import (
	"time"

	"saasadmin/internal/models"
)

// 请求结构体，字段白名单；更新请求使用指针，未传字段保持原值
// 格式校验由 binding 标签完成（gin 绑定时执行）

// ========== 认证 ==========

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"` // 用户名或邮箱
	Password string `json:"password" binding:"required,max=72"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,username"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name" binding:"max=100"`
}

// ClientMeta 登录时记录的客户端信息
type ClientMeta struct {
	UserAgent string
	ClientIP  string
}

// ========== 用户 ==========

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,username"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name" binding:"max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=admin editor user"`
	TenantID *uint  `json:"tenant_id"`
	Status   string `json:"status" binding:"omitempty,oneof=active inactive pending"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50,username"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin editor user"`
	TenantID *uint   `json:"tenant_id"` // 0 表示移出租户
	Status   *string `json:"status" binding:"omitempty,oneof=active inactive pending"`
}

// UserFilter 用户列表过滤条件
type UserFilter struct {
	TenantID *uint
	Role     string
	Status   string
}

// ========== 租户 ==========

type CreateTenantRequest struct {
	Name   string `json:"name" binding:"required,min=2,max=100"`
	Domain string `json:"domain" binding:"required,max=255,fqdn"`
	Status string `json:"status" binding:"omitempty,oneof=active inactive trial"`
}

type UpdateTenantRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=100"`
	Domain *string `json:"domain" binding:"omitempty,max=255,fqdn"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive trial"`
}

// ========== 套餐 ==========

type CreatePlanRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Price       *int64   `json:"price" binding:"required,min=0"`
	Currency    string   `json:"currency" binding:"omitempty,iso4217"`
	Interval    string   `json:"interval" binding:"omitempty,oneof=month year"`
	Status      string   `json:"status" binding:"omitempty,oneof=active inactive"`
	Features    []string `json:"features" binding:"omitempty,max=50,dive,min=1,max=200"`
}

type UpdatePlanRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Price       *int64    `json:"price" binding:"omitempty,min=0"`
	Currency    *string   `json:"currency" binding:"omitempty,iso4217"`
	Interval    *string   `json:"interval" binding:"omitempty,oneof=month year"`
	Status      *string   `json:"status" binding:"omitempty,oneof=active inactive"`
	Features    *[]string `json:"features" binding:"omitempty,max=50,dive,min=1,max=200"`
}

// ========== 订阅 ==========

type CreateSubscriptionRequest struct {
	TenantID    uint       `json:"tenant_id" binding:"required"`
	PlanID      uint       `json:"plan_id" binding:"required"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending active past_due canceled"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	RenewalDate *time.Time `json:"renewal_date"`
}

type UpdateSubscriptionRequest struct {
	TenantID    *uint      `json:"tenant_id" binding:"omitempty,min=1"`
	PlanID      *uint      `json:"plan_id" binding:"omitempty,min=1"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending active past_due canceled"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	RenewalDate *time.Time `json:"renewal_date"`
}

// SubscriptionFilter 订阅列表过滤条件
type SubscriptionFilter struct {
	TenantID *uint
	Status   string
}

// ========== 配置 ==========

type UpsertSettingRequest struct {
	TenantID *uint  `json:"tenant_id"` // 为空或0表示全局配置
	Key      string `json:"key" binding:"required,max=100"`
	Value    string `json:"value" binding:"max=10000"`
}

type UpdateSettingRequest struct {
	Value *string `json:"value" binding:"required,max=10000"`
}

// ========== 角色 ==========

type CreateRoleRequest struct {
	Name        string                      `json:"name" binding:"required,min=2,max=50"`
	Description string                      `json:"description" binding:"max=255"`
	Permissions []models.ResourcePermission `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        *string                      `json:"name" binding:"omitempty,min=2,max=50"`
	Description *string                      `json:"description" binding:"omitempty,max=255"`
	Permissions *[]models.ResourcePermission `json:"permissions"`
}

// ========== 权限目录 ==========

type CreatePermissionRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=255"`
}

type UpdatePermissionRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}
