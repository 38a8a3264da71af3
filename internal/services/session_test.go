package services

import (
	"context"
	"testing"
	"time"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"
	"saasadmin/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_LoginAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", models.RoleEditor, nil)

	result, err := env.sessions.Login(ctx, LoginRequest{Username: "alice", Password: "secret123"}, ClientMeta{UserAgent: "go-test", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, alice.ID, result.User.ID)
	assert.NotNil(t, result.User.LastLoginAt)

	// 邮箱同样可以登录
	_, err = env.sessions.Login(ctx, LoginRequest{Username: "ALICE@example.com", Password: "secret123"}, ClientMeta{})
	require.NoError(t, err)

	principal, session, err := env.sessions.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, principal.ID)
	assert.Equal(t, models.RoleEditor, principal.Role)
	assert.Equal(t, "10.0.0.1", session.ClientIP)
	assert.Equal(t, session.ID, env.sessions.SessionIDFromToken(result.Token))
}

func TestSessionService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice", models.RoleUser, nil)
	pending := env.seedUser(t, "pending", models.RoleUser, nil)
	require.NoError(t, env.db.Model(pending).Update("status", models.UserStatusPending).Error)

	_, err := env.sessions.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"}, ClientMeta{})
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = env.sessions.Login(ctx, LoginRequest{Username: "nobody", Password: "secret123"}, ClientMeta{})
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = env.sessions.Login(ctx, LoginRequest{Username: "pending", Password: "secret123"}, ClientMeta{})
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestSessionService_LogoutInvalidatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice", models.RoleUser, nil)

	result, err := env.sessions.Login(ctx, LoginRequest{Username: "alice", Password: "secret123"}, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, env.sessions.Logout(ctx, env.sessions.SessionIDFromToken(result.Token)))
	_, _, err = env.sessions.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	// 重复注销不报错
	assert.NoError(t, env.sessions.Logout(ctx, "missing"))
}

func TestSessionService_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", models.RoleUser, nil)

	_, _, err := env.sessions.Authenticate(ctx, "")
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, _, err = env.sessions.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	// 签名正确但会话不存在
	forged, err := jwt.NewJWTManager("test-secret", time.Hour).GenerateToken("no-such-session", alice.ID, "alice", models.RoleAdmin, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, _, err = env.sessions.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	// 其他密钥签发
	foreign, err := jwt.NewJWTManager("other-secret", time.Hour).GenerateToken("x", alice.ID, "alice", models.RoleAdmin, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, _, err = env.sessions.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestSessionService_DeactivatedUserRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", models.RoleUser, nil)

	result, err := env.sessions.Login(ctx, LoginRequest{Username: "alice", Password: "secret123"}, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(alice).Update("status", models.UserStatusInactive).Error)
	_, _, err = env.sessions.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestSessionService_ExpiryAndCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice", models.RoleUser, nil)

	result, err := env.sessions.Login(ctx, LoginRequest{Username: "alice", Password: "secret123"}, ClientMeta{})
	require.NoError(t, err)

	// 会话表中的过期时间优先于令牌本身
	env.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = env.sessions.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	deleted, err := env.sessions.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	scheduler := NewSessionCleanupScheduler(env.sessions, "@every 15m")
	scheduler.RunOnce()

	var remaining int64
	require.NoError(t, env.db.Model(&models.Session{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestSessionCleanupScheduler_StartStop(t *testing.T) {
	env := newTestEnv(t)

	bad := NewSessionCleanupScheduler(env.sessions, "not a cron")
	assert.Error(t, bad.Start())

	scheduler := NewSessionCleanupScheduler(env.sessions, "@every 15m")
	require.NoError(t, scheduler.Start())
	assert.Error(t, scheduler.Start())
	scheduler.Stop()
	scheduler.Stop()
}
