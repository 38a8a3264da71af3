package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"saasadmin/internal/database/dbtest"
	"saasadmin/internal/models"
	"saasadmin/internal/realtime"
	"saasadmin/pkg/config"
	"saasadmin/pkg/jwt"
	"saasadmin/pkg/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiEnv struct {
	t      *testing.T
	db     *gorm.DB
	hub    *realtime.Hub
	engine *gin.Engine
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{CookieName: "saas_session"},
		Auth:    config.AuthConfig{AllowRegistration: true},
		CORS: config.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PATCH", "DELETE"},
			AllowHeaders: []string{"Authorization", "Content-Type"},
		},
	}
}

func newAPIEnv(t *testing.T, mutate func(deps *Dependencies)) *apiEnv {
	t.Helper()
	db := dbtest.Open(t)
	hub := realtime.NewHub()
	deps := Dependencies{
		Config: testConfig(),
		DB:     db,
		JWT:    jwt.NewJWTManager("router-test-secret", time.Hour),
		Hub:    hub,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &apiEnv{t: t, db: db, hub: hub, engine: SetupRouter(deps)}
}

func (e *apiEnv) seedUser(username, role string, tenantID *uint) *models.User {
	e.t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Status:   models.UserStatusActive,
		TenantID: tenantID,
	}
	require.NoError(e.t, user.SetPassword("secret123"))
	require.NoError(e.t, e.db.Create(user).Error)
	return user
}

func (e *apiEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doWithHeader(method, path, token, body, nil)
}

func (e *apiEnv) doWithHeader(method, path, token string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) login(username string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": "secret123"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(e.t, body.Token)
	return body.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   *struct {
		Fields []string `json:"fields"`
	} `json:"error"`
}

func (e *apiEnv) activityCount() int64 {
	e.t.Helper()
	var count int64
	require.NoError(e.t, e.db.Model(&models.Activity{}).Count(&count).Error)
	return count
}

func TestAPI_RequiresSession(t *testing.T) {
	env := newAPIEnv(t, nil)

	for _, path := range []string{"/api/users", "/api/tenants", "/api/plans", "/api/subscriptions", "/api/settings", "/api/activities", "/api/dashboard/stats", "/api/auth/me"} {
		w := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, 401, decode[errorBody](t, w).Code)
	}

	w := env.do(http.MethodGet, "/api/users", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_UsersLifecycle(t *testing.T) {
	env := newAPIEnv(t, nil)
	admin := env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")

	w := env.do(http.MethodPost, "/api/users", token, gin.H{
		"username": "alice", "email": "alice@example.com", "password": "secret123", "role": "editor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	assert.Equal(t, "editor", created["role"])
	assert.NotContains(t, created, "password_hash")
	assert.NotContains(t, created, "password")

	w = env.do(http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Len(t, decode[[]models.User](t, w), 2)

	aliceID := uint(created["id"].(float64))
	w = env.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/users/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 删除自己
	w = env.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ValidationErrors(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")
	before := env.activityCount()

	w := env.do(http.MethodPost, "/api/users", token, gin.H{"username": "a!", "email": "not-an-email", "password": "secret123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	require.NotNil(t, body.Error)
	assert.ElementsMatch(t, []string{"username", "email"}, body.Error.Fields)

	w = env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "acme.com", "plan": "gold"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body = decode[errorBody](t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, []string{"plan"}, body.Error.Fields)

	w = env.do(http.MethodPost, "/api/plans", token, gin.H{"name": "Pro", "price": -1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"price"}, decode[errorBody](t, w).Error.Fields)

	w = env.do(http.MethodPost, "/api/plans", token, `{"name": "Pro", "price": "cheap"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/tenants", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, before, env.activityCount())
}

func TestAPI_NonAdminRestrictions(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	editor := env.seedUser("editor", models.RoleEditor, nil)
	other := env.seedUser("other", models.RoleUser, nil)
	token := env.login("editor")

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/users"},
		{http.MethodPost, "/api/tenants"},
		{http.MethodPost, "/api/plans"},
		{http.MethodPost, "/api/subscriptions"},
		{http.MethodPost, "/api/settings"},
		{http.MethodPost, "/api/roles"},
		{http.MethodDelete, fmt.Sprintf("/api/users/%d", other.ID)},
		{http.MethodDelete, fmt.Sprintf("/api/users/%d", editor.ID)},
	} {
		w := env.do(tc.method, tc.path, token, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, tc.method+" "+tc.path)
	}

	// 修改他人
	w := env.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", other.ID), token, gin.H{"full_name": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 修改自己时特权字段被忽略
	w = env.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", editor.ID), token, gin.H{"full_name": "Ed", "role": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.User](t, w)
	assert.Equal(t, "Ed", updated.FullName)
	assert.Equal(t, models.RoleEditor, updated.Role)

	// 读接口对所有登录用户开放
	w = env.do(http.MethodGet, "/api/tenants", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_TenantDeleteWithUsers(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")

	w := env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "acme.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tenant := decode[models.Tenant](t, w)

	w = env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "other.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.seedUser("member", models.RoleUser, &tenant.ID)
	before := env.activityCount()

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/tenants/%d", tenant.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, before, env.activityCount())

	w = env.do(http.MethodGet, fmt.Sprintf("/api/tenants/%d", tenant.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_SubscriptionReferences(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")

	w := env.do(http.MethodPost, "/api/subscriptions", token, gin.H{"tenant_id": 42, "plan_id": 7})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"tenant_id"}, decode[errorBody](t, w).Error.Fields)

	w = env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "acme.com"})
	tenant := decode[models.Tenant](t, w)
	w = env.do(http.MethodPost, "/api/plans", token, gin.H{"name": "Pro", "price": 4900, "features": []string{"SSO"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode[models.Plan](t, w)

	w = env.do(http.MethodPost, "/api/subscriptions", token, gin.H{"tenant_id": tenant.ID, "plan_id": plan.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[models.Subscription](t, w)

	w = env.do(http.MethodPatch, fmt.Sprintf("/api/subscriptions/%d", sub.ID), token, gin.H{"status": "canceled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode[models.Subscription](t, w).EndDate)
}

func TestAPI_SettingsUpsert(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")

	w := env.do(http.MethodPost, "/api/settings", token, gin.H{"key": "site_name", "value": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.Setting](t, w)

	w = env.do(http.MethodPost, "/api/settings", token, gin.H{"key": "site_name", "value": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[models.Setting](t, w)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Renamed", second.Value)

	w = env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "acme.com"})
	tenant := decode[models.Tenant](t, w)
	w = env.do(http.MethodPost, "/api/settings", token, gin.H{"tenantId": tenant.ID, "key": "site_name", "value": "Tenant"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, tenant.ID, decode[models.Setting](t, w).TenantID)

	w = env.do(http.MethodGet, "/api/settings?tenant_id=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Setting](t, w), 1)

	w = env.do(http.MethodGet, "/api/activities?limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	activities := decode[[]models.Activity](t, w)
	require.Len(t, activities, 2)
	assert.Equal(t, "setting.created", activities[0].Action)
	assert.Equal(t, "tenant.created", activities[1].Action)
	assert.Greater(t, activities[0].ID, activities[1].ID)
}

func TestAPI_DashboardStats(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")

	env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "acme.com"})
	env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Globex", "domain": "globex.com", "status": "trial"})
	env.do(http.MethodPost, "/api/plans", token, gin.H{"name": "Pro", "price": 100})

	w := env.do(http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]int64](t, w)
	assert.Equal(t, int64(1), stats["total_users"])
	assert.Equal(t, int64(1), stats["active_users"])
	assert.Equal(t, int64(2), stats["total_tenants"])
	assert.Equal(t, int64(1), stats["active_tenants"])
	assert.Equal(t, int64(1), stats["total_plans"])
	assert.Equal(t, int64(0), stats["active_subscriptions"])
}

func TestAPI_AuthFlow(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	require.NoError(t, env.db.Create(&models.Role{
		Name:        models.RoleAdmin,
		Permissions: []models.ResourcePermission{{Resource: models.ResourceUsers, Create: true, Read: true, Update: true, Delete: true}},
	}).Error)

	w := env.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Set-Cookie"), "saas_session="))
	token := decode[map[string]interface{}](t, w)["token"].(string)

	w = env.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		User        models.User                 `json:"user"`
		Permissions []models.ResourcePermission `json:"permissions"`
	}](t, w)
	assert.Equal(t, "admin", me.User.Username)
	require.Len(t, me.Permissions, 1)
	assert.True(t, me.Permissions[0].Delete)

	w = env.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 没有令牌也可以注销
	w = env.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_Register(t *testing.T) {
	env := newAPIEnv(t, nil)

	w := env.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "newbie", "email": "newbie@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.User](t, w)
	assert.Equal(t, models.RoleUser, user.Role)

	w = env.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "sneaky", "email": "s@example.com", "password": "secret123", "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	closed := newAPIEnv(t, func(deps *Dependencies) { deps.Config.Auth.AllowRegistration = false })
	w = closed.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "newbie", "email": "newbie@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_LoginRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newAPIEnv(t, func(deps *Dependencies) {
		deps.Redis = client
		deps.Limiter = ratelimit.NewLimiter(client, "test", 2, time.Minute)
	})
	env.seedUser("admin", models.RoleAdmin, nil)

	for i := 0; i < 2; i++ {
		w := env.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := env.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "secret123"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	mr.FastForward(time.Minute + time.Second)
	w = env.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_LoginRateLimitIgnoresForwardedFor(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newAPIEnv(t, func(deps *Dependencies) {
		deps.Limiter = ratelimit.NewLimiter(client, "test", 2, time.Minute)
	})
	env.seedUser("admin", models.RoleAdmin, nil)

	// 未配置受信任代理时伪造的 X-Forwarded-For 不影响计数
	for i := 0; i < 6; i++ {
		header := http.Header{"X-Forwarded-For": []string{fmt.Sprintf("10.0.0.%d", i)}}
		w := env.doWithHeader(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "wrong"}, header)
		if i < 2 {
			assert.Equal(t, http.StatusUnauthorized, w.Code, i)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code, i)
		}
	}
}

func TestAPI_LoginRateLimitTrustedProxy(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newAPIEnv(t, func(deps *Dependencies) {
		// httptest 的连接地址是 192.0.2.1
		deps.Config.Server.TrustedProxies = []string{"192.0.2.0/24"}
		deps.Limiter = ratelimit.NewLimiter(client, "test", 2, time.Minute)
	})
	env.seedUser("admin", models.RoleAdmin, nil)

	for i := 0; i < 4; i++ {
		header := http.Header{"X-Forwarded-For": []string{fmt.Sprintf("10.0.0.%d", i)}}
		w := env.doWithHeader(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "wrong"}, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, i)
	}

	header := http.Header{"X-Forwarded-For": []string{"10.0.0.0"}}
	w := env.doWithHeader(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "wrong"}, header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.doWithHeader(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "wrong"}, header)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAPI_SettingsFilterByTenantAlias(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")

	w := env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "acme.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tenant := decode[models.Tenant](t, w)

	w = env.do(http.MethodPost, "/api/settings", token, gin.H{"key": "site_name", "value": "Global"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(http.MethodPost, "/api/settings", token, gin.H{"tenant_id": tenant.ID, "key": "theme", "value": "dark"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, param := range []string{"tenantId", "tenant_id"} {
		w = env.do(http.MethodGet, fmt.Sprintf("/api/settings?%s=%d", param, tenant.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code, param)
		settings := decode[[]models.Setting](t, w)
		require.Len(t, settings, 1, param)
		assert.Equal(t, "theme", settings[0].Key)
	}

	w = env.do(http.MethodGet, "/api/settings?tenantId=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_PermissionsCatalogue(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	env.seedUser("editor", models.RoleEditor, nil)
	adminToken := env.login("admin")
	editorToken := env.login("editor")

	w := env.do(http.MethodPost, "/api/permissions", editorToken, gin.H{"name": "users:export"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/permissions", adminToken, gin.H{"name": "users:export", "description": "导出用户"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	perm := decode[models.Permission](t, w)
	assert.Equal(t, "users:export", perm.Name)

	w = env.do(http.MethodPost, "/api/permissions", adminToken, gin.H{"name": "users:export"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/permissions", editorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Permission](t, w), 1)

	path := fmt.Sprintf("/api/permissions/%d", perm.ID)
	w = env.do(http.MethodPatch, path, adminToken, gin.H{"description": "导出全部用户"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "导出全部用户", decode[models.Permission](t, w).Description)

	w = env.do(http.MethodDelete, path, editorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(http.MethodGet, path, editorToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 创建、更新、删除各一条
	assert.EqualValues(t, 3, env.activityCount())
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	env := newAPIEnv(t, nil)

	w := env.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", health["status"])

	env.do(http.MethodGet, "/api/users", "", nil)
	w = env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAPI_ActivityStream(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.seedUser("admin", models.RoleAdmin, nil)
	token := env.login("admin")

	server := httptest.NewServer(env.engine)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/activities/stream?token=" + token
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/api/activities/stream", nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	w := env.do(http.MethodPost, "/api/tenants", token, gin.H{"name": "Acme", "domain": "acme.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type string          `json:"type"`
		Data models.Activity `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, realtime.EventTypeActivity, event.Type)
	assert.Equal(t, "tenant.created", event.Data.Action)
}
