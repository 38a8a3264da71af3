package middleware

import (
	"strings"

	"saasadmin/internal/models"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextUserKey      = "user"
	ContextSessionIDKey = "session_id"
)

// AuthMiddleware 会话认证中间件
type AuthMiddleware struct {
	sessions   *services.SessionService
	cookieName string
}

func NewAuthMiddleware(sessions *services.SessionService, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		cookieName: cookieName,
	}
}

// RequireSession 必须登录
// 令牌来源依次为 Authorization 头、会话Cookie、token 查询参数（WebSocket无法自定义请求头）
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, m.cookieName)

		user, session, err := m.sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextSessionIDKey, session.ID)
		c.Next()
	}
}

// RequireAdmin 必须是管理员，需放在 RequireSession 之后
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.RequireAdmin(GetPrincipal(c)); err != nil {
			response.Fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ExtractToken 从请求中取出令牌
func ExtractToken(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimSpace(authHeader[7:])
		}
		return ""
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie
		}
	}
	return c.Query("token")
}

// GetPrincipal 当前登录用户，未登录返回 nil
func GetPrincipal(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// GetSessionID 当前会话ID
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextSessionIDKey)
}
