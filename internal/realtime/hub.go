package realtime

import (
	"encoding/json"
	"sync"

	"saasadmin/internal/models"
	"saasadmin/pkg/logger"
)

// EventTypeActivity 审计事件
const EventTypeActivity = "activity"

// Event 推送给前端的消息
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub 维护本实例的WebSocket连接并广播已提交的审计记录
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub 创建Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

// Register 添加客户端
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister 移除客户端并关闭其发送队列
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast 广播一条审计记录
func (h *Hub) Broadcast(activity *models.Activity) {
	data, err := encodeActivity(activity)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to encode activity event")
		return
	}
	h.Send(data)
}

// Send 广播已编码的消息，客户端队列满时丢弃，不阻塞调用方
func (h *Hub) Send(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 断开所有客户端，用于服务关闭
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func encodeActivity(activity *models.Activity) ([]byte, error) {
	return json.Marshal(Event{Type: EventTypeActivity, Data: activity})
}
