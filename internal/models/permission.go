package models

// ResourcePermission 单个资源的CRUD权限
type ResourcePermission struct {
	Resource string `json:"resource"`
	Create   bool   `json:"create"`
	Read     bool   `json:"read"`
	Update   bool   `json:"update"`
	Delete   bool   `json:"delete"`
}

// 资源常量
const (
	ResourceUsers         = "users"
	ResourceTenants       = "tenants"
	ResourcePlans         = "plans"
	ResourceSubscriptions = "subscriptions"
	ResourceSettings      = "settings"
	ResourceRoles         = "roles"
)

// 权限操作常量
const (
	ActionCreate = "create" // 创建
	ActionRead   = "read"   // 读取
	ActionUpdate = "update" // 更新
	ActionDelete = "delete" // 删除
)

// Resources 矩阵中可配置的资源（有序）
var Resources = []string{
	ResourceUsers,
	ResourceTenants,
	ResourcePlans,
	ResourceSubscriptions,
	ResourceSettings,
	ResourceRoles,
}

// Allows 判断操作是否允许
func (p ResourcePermission) Allows(action string) bool {
	switch action {
	case ActionCreate:
		return p.Create
	case ActionRead:
		return p.Read
	case ActionUpdate:
		return p.Update
	case ActionDelete:
		return p.Delete
	default:
		return false
	}
}

// Permission 权限目录中的一项，如 "users:export"
// 仅供管理员维护和界面展示，接口鉴权不依赖它
type Permission struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}
