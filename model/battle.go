package model

import "time"

type BattleStatus int8

const (
	BattleStatusActive  BattleStatus = 0 // 对战进行中(含等待双方加入)
	BattleStatusEnded   BattleStatus = 1 // 有人胜出
	BattleStatusTimeout BattleStatus = 2 // 计时耗尽, 平局
)

type ReplayEventType string

const (
	ReplayEventCodeUpdate ReplayEventType = "code_update"
	ReplayEventSubmission ReplayEventType = "submission"
)

// ReplayEvent 回放日志条目, TimestampMs 为距房间开始的毫秒偏移
type ReplayEvent struct {
	Type        ReplayEventType `json:"type"`
	PlayerID    uint64          `json:"playerId"`
	TimestampMs int64           `json:"timestampMs"`
	Data        string          `json:"data"`
}

// RunResult 沙箱执行结果, 由外部 runner 返回
type RunResult struct {
	Success       bool   `json:"success"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	ExitCode      int    `json:"exitCode"`
	ExecutionTime int64  `json:"executionTime"` // 单位: 毫秒
}

// BattleArchive 已结束对战的存档记录
type BattleArchive struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	RoomID       string    `gorm:"type:varchar(64);uniqueIndex"`
	Player1ID    uint64    `gorm:"index"`
	Player2ID    uint64    `gorm:"index"`
	WinnerID     *uint64   `gorm:"index"` // nil 表示平局
	Reason       string    `gorm:"type:varchar(32)"`
	StartTime    time.Time
	EndTime      time.Time
	ReplayObject string    `gorm:"type:varchar(128)"` // MinIO 对象名
	CreatedAt    time.Time
}

func (BattleArchive) TableName() string {
	return "battle_archive"
}

type GetBattleReplayParam struct {
	RoomID string `form:"room_id" binding:"required"`
}

type GetBattleReplayResponse struct {
	RoomID      string `json:"room_id"`
	DownloadURL string `json:"download_url"`
}
