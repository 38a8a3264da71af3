package models

// GlobalTenantID 全局配置的租户ID（0表示平台级）
const GlobalTenantID uint = 0

// Setting 键值配置，(tenant_id, key) 唯一
type Setting struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;default:0;uniqueIndex:idx_settings_scope_key"`
	Key      string `json:"key" gorm:"not null;size:100;uniqueIndex:idx_settings_scope_key"`
	Value    string `json:"value" gorm:"type:text"`
}

// TableName 表名
func (s *Setting) TableName() string {
	return "settings"
}

// IsGlobal 是否平台级配置
func (s *Setting) IsGlobal() bool {
	return s.TenantID == GlobalTenantID
}
