package services

import (
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"saasadmin/internal/database/dbtest"
	"saasadmin/internal/models"
	"saasadmin/pkg/jwt"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// captureBroadcaster 记录提交后推送的审计记录
type captureBroadcaster struct {
	mu         sync.Mutex
	activities []*models.Activity
}

func (b *captureBroadcaster) Broadcast(activity *models.Activity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activities = append(b.activities, activity)
}

func (b *captureBroadcaster) actions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]string, 0, len(b.activities))
	for _, a := range b.activities {
		result = append(result, a.Action)
	}
	return result
}

// failingRecorder 模拟审计写入失败
type failingRecorder struct {
	published int
}

func (r *failingRecorder) Record(tx *gorm.DB, entry ActivityEntry) (*models.Activity, error) {
	return nil, stderrors.New("activity store unavailable")
}

func (r *failingRecorder) Publish(activity *models.Activity) {
	r.published++
}

type testEnv struct {
	db            *gorm.DB
	broadcaster   *captureBroadcaster
	activities    *ActivityService
	users         *UserService
	tenants       *TenantService
	plans         *PlanService
	subscriptions *SubscriptionService
	settings      *SettingService
	roles         *RoleService
	permissions   *PermissionService
	dashboard     *DashboardService
	sessions      *SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	broadcaster := &captureBroadcaster{}
	activities := NewActivityService(db, broadcaster)

	return &testEnv{
		db:            db,
		broadcaster:   broadcaster,
		activities:    activities,
		users:         NewUserService(db, activities),
		tenants:       NewTenantService(db, activities),
		plans:         NewPlanService(db, activities),
		subscriptions: NewSubscriptionService(db, activities),
		settings:      NewSettingService(db, activities),
		roles:         NewRoleService(db, activities),
		permissions:   NewPermissionService(db, activities),
		dashboard:     NewDashboardService(db),
		sessions:      NewSessionService(db, jwt.NewJWTManager("test-secret", time.Hour)),
	}
}

// seedUser 直接写库创建用户，不产生审计记录
func (e *testEnv) seedUser(t *testing.T, username, role string, tenantID *uint) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Status:   models.UserStatusActive,
		TenantID: tenantID,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedTenant(t *testing.T, name string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: name, Domain: name + ".example.com", Status: models.TenantStatusActive}
	require.NoError(t, e.db.Create(tenant).Error)
	return tenant
}

func (e *testEnv) seedPlan(t *testing.T, name string, price int64) *models.Plan {
	t.Helper()
	plan := &models.Plan{Name: name, Price: price, Currency: "USD", Interval: models.PlanIntervalMonth, Status: models.PlanStatusActive}
	require.NoError(t, e.db.Create(plan).Error)
	return plan
}

func (e *testEnv) countActivities(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Activity{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func (e *testEnv) lastActivity(t *testing.T) *models.Activity {
	t.Helper()
	var activity models.Activity
	require.NoError(t, e.db.Order("id DESC").First(&activity).Error)
	return &activity
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }

func int64Ptr(v int64) *int64 { return &v }
