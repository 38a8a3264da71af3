package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"saasadmin/internal/models"
	"saasadmin/pkg/errors"
	"saasadmin/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginResult 登录结果
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SessionService 会话层：登录、注销、令牌校验
type SessionService struct {
	db         *gorm.DB
	jwtManager *jwt.JWTManager
	now        func() time.Time
}

func NewSessionService(db *gorm.DB, jwtManager *jwt.JWTManager) *SessionService {
	return &SessionService{
		db:         db,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

// Login 用户名或邮箱 + 密码登录，成功后创建会话
func (s *SessionService) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*LoginResult, error) {
	db := s.db.WithContext(ctx)
	identity := strings.TrimSpace(req.Username)

	var user models.User
	err := db.Where("username = ? OR email = ?", identity, strings.ToLower(identity)).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Unauthenticated("用户名或密码错误")
		}
		return nil, translateDBError(err)
	}
	if !user.CheckPassword(req.Password) {
		return nil, errors.Unauthenticated("用户名或密码错误")
	}
	if !user.IsActive() {
		return nil, errors.Forbidden("账号未激活或已停用")
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserAgent: truncate(meta.UserAgent, 255),
		ClientIP:  meta.ClientIP,
		ExpiresAt: now.Add(s.jwtManager.GetTokenDuration()),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(session).Error; err != nil {
			return err
		}
		user.LastLoginAt = &now
		return tx.Model(&user).Update("last_login_at", now).Error
	})
	if err != nil {
		return nil, translateDBError(err)
	}

	token, err := s.jwtManager.GenerateToken(session.ID, user.ID, user.Username, user.Role, session.ExpiresAt)
	if err != nil {
		return nil, errors.Internal("生成令牌失败", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      &user,
	}, nil
}

// Authenticate 校验令牌并加载主体，会话不存在、已过期或用户不可用都视为未登录
func (s *SessionService) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, errors.Unauthenticated("缺少认证令牌")
	}
	claims, err := s.jwtManager.VerifyToken(token)
	if err != nil {
		return nil, nil, errors.Unauthenticated("无效的令牌")
	}

	db := s.db.WithContext(ctx)

	var session models.Session
	if err := db.Where("id = ?", claims.ID).First(&session).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.Unauthenticated("会话已失效")
		}
		return nil, nil, translateDBError(err)
	}
	if session.IsExpired(s.now()) || session.UserID != claims.UserID {
		return nil, nil, errors.Unauthenticated("会话已失效")
	}

	var user models.User
	if err := db.First(&user, session.UserID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.Unauthenticated("用户不存在")
		}
		return nil, nil, translateDBError(err)
	}
	if !user.IsActive() {
		return nil, nil, errors.Unauthenticated("账号未激活或已停用")
	}

	return &user, &session, nil
}

// Logout 删除会话，会话不存在时视为成功
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.Session{}).Error
	return translateDBError(err)
}

// SessionIDFromToken 从令牌中取出会话ID，令牌无效时返回空串
func (s *SessionService) SessionIDFromToken(token string) string {
	claims, err := s.jwtManager.VerifyToken(token)
	if err != nil {
		return ""
	}
	return claims.ID
}

// DeleteExpired 删除已过期的会话
func (s *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, translateDBError(result.Error)
	}
	return result.RowsAffected, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
