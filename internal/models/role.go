package models

import "gorm.io/datatypes"

// Role 角色权限矩阵
// 授权判断以用户的 role 字符串为准，矩阵仅供前端展示（见 /auth/me）
type Role struct {
	BaseModel
	Name        string                                  `json:"name" gorm:"unique;not null;size:50"`
	Description string                                  `json:"description" gorm:"size:255"`
	Permissions datatypes.JSONSlice[ResourcePermission] `json:"permissions"`
}

// TableName 表名
func (r *Role) TableName() string {
	return "roles"
}

// Allows 查找资源在矩阵中的某个操作是否允许，未列出的资源视为不允许
func (r *Role) Allows(resource, action string) bool {
	for _, p := range r.Permissions {
		if p.Resource == resource {
			return p.Allows(action)
		}
	}
	return false
}
