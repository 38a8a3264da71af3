package models

import "time"

// Session 登录会话，ID 同时作为JWT的jti
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	UserAgent string    `json:"user_agent" gorm:"size:255"`
	ClientIP  string    `json:"client_ip" gorm:"size:64"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 表名
func (s *Session) TableName() string {
	return "sessions"
}

// IsExpired 会话是否过期
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
