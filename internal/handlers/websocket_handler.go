package handlers

import (
	"net/http"

	"saasadmin/internal/middleware"
	"saasadmin/internal/realtime"
	"saasadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler 审计记录实时推送
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	hub      *realtime.Hub
}

// NewWebSocketHandler allowedOrigins 与CORS配置一致
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if middleware.OriginAllowed(allowedOrigins, origin) {
					return true
				}
				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024 * 16,
		},
		hub: hub,
	}
}

// ActivityStream 订阅审计记录，认证由 RequireSession 完成（令牌可放在 ?token=）
func (h *WebSocketHandler) ActivityStream(c *gin.Context) {
	user := middleware.GetPrincipal(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"user_id":     user.ID,
		"remote_addr": c.ClientIP(),
	}).Info("Activity stream connected")

	realtime.NewClient(h.hub, conn, user.ID).Run()
}
