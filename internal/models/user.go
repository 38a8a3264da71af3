package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型（身份存储）
type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"unique;not null;size:50"`
	Email        string     `json:"email" gorm:"unique;not null;size:100"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	FullName     string     `json:"full_name" gorm:"size:100"`
	Role         string     `json:"role" gorm:"not null;default:'user';size:20"`
	TenantID     *uint      `json:"tenant_id" gorm:"index"` // 为空表示平台级用户
	Status       string     `json:"status" gorm:"not null;default:'active';size:20;index"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// 租户存在用户时数据库层禁止删除
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 用户角色常量，授权以此字符串为准
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// SetPassword 设置密码
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsAdmin 角色字段必须严格等于 "admin"
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive 检查用户是否激活
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
