package ws

import (
	"sync"

	json "github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// outMessage 下行消息信封
type outMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub 连接注册表. 维护 connID 到客户端与房间成员关系,
// 对业务层只暴露点对点与按房间广播两种投递方式.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		log:     log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.log.Info("client connected", zap.String("connId", c.ID))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	for roomID, members := range h.rooms {
		if _, ok := members[c.ID]; ok {
			delete(members, c.ID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.mu.Unlock()

	c.closeSend()
	h.log.Info("client disconnected", zap.String("connId", c.ID))
}

// JoinRoom 将连接挂入房间分组, 重复挂入幂等
func (h *Hub) JoinRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][connID] = c
}

func (h *Hub) LeaveRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// ToConn 点对点投递, 连接不存在或发送缓冲已满时丢弃
func (h *Hub) ToConn(connID, event string, payload any) {
	data, err := json.Marshal(outMessage{Type: event, Payload: payload})
	if err != nil {
		h.log.Error("failed to marshal outbound message", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.enqueue(data)
}

// ToRoom 广播给房间内所有连接
func (h *Hub) ToRoom(roomID, event string, payload any) {
	data, err := json.Marshal(outMessage{Type: event, Payload: payload})
	if err != nil {
		h.log.Error("failed to marshal outbound message", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	members := h.rooms[roomID]
	targets := make([]*Client, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(data)
	}
}

// ClientCount 当前在线连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
