package handlers

import (
	"net/http"
	"time"

	"saasadmin/internal/middleware"
	"saasadmin/internal/models"
	"saasadmin/internal/services"
	"saasadmin/pkg/config"
	"saasadmin/pkg/errors"
	"saasadmin/pkg/logger"
	"saasadmin/pkg/metrics"
	"saasadmin/pkg/ratelimit"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	sessions *services.SessionService
	users    *services.UserService
	roles    *services.RoleService
	limiter  *ratelimit.Limiter
	session  config.SessionConfig
	auth     config.AuthConfig
}

func NewAuthHandler(sessions *services.SessionService, users *services.UserService, roles *services.RoleService, limiter *ratelimit.Limiter, sessionCfg config.SessionConfig, authCfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		users:    users,
		roles:    roles,
		limiter:  limiter,
		session:  sessionCfg,
		auth:     authCfg,
	}
}

// MeResponse 当前用户及其角色的权限矩阵（仅供界面展示）
type MeResponse struct {
	User        *models.User                `json:"user"`
	Permissions []models.ResourcePermission `json:"permissions"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req, services.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		logger.GetLogger().WithFields(logrus.Fields{
			"username":  req.Username,
			"client_ip": c.ClientIP(),
		}).Info("Login failed")
		response.Fail(c, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	if h.limiter != nil {
		if err := h.limiter.Reset(c.Request.Context(), "login:"+c.ClientIP()); err != nil {
			logger.GetLogger().WithError(err).Warn("Failed to reset login rate limit")
		}
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	response.Success(c, result)
}

// Register 自助注册
func (h *AuthHandler) Register(c *gin.Context) {
	if !h.auth.AllowRegistration {
		response.Fail(c, errors.Forbidden("未开放注册"))
		return
	}

	var req services.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, user)
}

// Logout 注销当前会话，令牌缺失或无效也视为成功
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c, h.session.CookieName)
	if sessionID := h.sessions.SessionIDFromToken(token); sessionID != "" {
		if err := h.sessions.Logout(c.Request.Context(), sessionID); err != nil {
			response.Fail(c, err)
			return
		}
	}

	h.clearSessionCookie(c)
	response.SuccessWithMessage(c, "登出成功")
}

// Me 当前登录用户
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetPrincipal(c)

	permissions, err := h.roles.PermissionsFor(c.Request.Context(), user.Role)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, MeResponse{User: user, Permissions: permissions})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	if h.session.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", h.session.CookieHTTPS, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	if h.session.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.CookieHTTPS, true)
}
