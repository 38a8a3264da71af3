package services

import (
	"context"

	"saasadmin/internal/models"

	"gorm.io/gorm"
)

// DashboardStats 仪表盘统计
type DashboardStats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveUsers         int64 `json:"active_users"`
	TotalTenants        int64 `json:"total_tenants"`
	ActiveTenants       int64 `json:"active_tenants"`
	TotalPlans          int64 `json:"total_plans"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
}

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats 每次调用实时计数，不做缓存
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	counts := []struct {
		model  interface{}
		status string
		dest   *int64
	}{
		{&models.User{}, "", &stats.TotalUsers},
		{&models.User{}, models.UserStatusActive, &stats.ActiveUsers},
		{&models.Tenant{}, "", &stats.TotalTenants},
		{&models.Tenant{}, models.TenantStatusActive, &stats.ActiveTenants},
		{&models.Plan{}, "", &stats.TotalPlans},
		{&models.Subscription{}, models.SubscriptionStatusActive, &stats.ActiveSubscriptions},
	}

	for _, c := range counts {
		query := db.Model(c.model)
		if c.status != "" {
			query = query.Where("status = ?", c.status)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, translateDBError(err)
		}
	}
	return stats, nil
}
