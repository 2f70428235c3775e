package service

// Broadcaster 房间定向与点对点下发能力, 由 ws.Hub 实现
type Broadcaster interface {
	// ToConn 向单个连接发送事件
	ToConn(connID, event string, payload any)
	// ToRoom 向房间内所有连接广播事件
	ToRoom(roomID, event string, payload any)
	// JoinRoom 将连接加入房间广播组
	JoinRoom(roomID, connID string)
	// LeaveRoom 将连接移出房间广播组
	LeaveRoom(roomID, connID string)
}
