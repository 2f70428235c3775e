package service

import "errors"

var (
	// ErrRoomNotFound 客户端引用了内存表中不存在的房间(如服务重启后)
	ErrRoomNotFound = errors.New("room not found")
	// ErrEventNotFound 客户端引用了内存表中不存在的赛事
	ErrEventNotFound = errors.New("competition event not found")
	// ErrNotHost 非房主调用房主专属操作
	ErrNotHost = errors.New("only the host can perform this action")
	// ErrAlreadyStarted 赛事已开始, 拒绝加入
	ErrAlreadyStarted = errors.New("competition already started")
	// ErrLobbyFull 大厅人数已满
	ErrLobbyFull = errors.New("competition lobby is full")
	// ErrReplayNotFound 对战存档无回放对象
	ErrReplayNotFound = errors.New("replay not found")
)
