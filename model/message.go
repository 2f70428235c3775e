package model

import "encoding/json"

// Envelope WebSocket 消息信封, Payload 按 Type 再解析
type Envelope struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

type JoinQueueParam struct {
	UserID   uint64 `json:"userId" validate:"required"`
	Username string `json:"username" validate:"required,max=64"`
	Rank     int8   `json:"rank" validate:"min=0,max=4"`
}

type JoinRoomParam struct {
	RoomID   string `json:"roomId" validate:"required"`
	Username string `json:"username" validate:"required,max=64"`
}

type BattleRoomParam struct {
	RoomID string `json:"roomId" validate:"required"`
}

type BattleCodeUpdateParam struct {
	RoomID string `json:"roomId" validate:"required"`
	Code   string `json:"code"`
}

type BattleSubmitParam struct {
	RoomID   string `json:"roomId" validate:"required"`
	Code     string `json:"code" validate:"required"`
	Language string `json:"language" validate:"required,oneof=python javascript go java cpp"`
	DryRun   bool   `json:"dryRun"`
}

type CompetitionJoinParam struct {
	EventID  string `json:"eventId" validate:"required"`
	UserID   uint64 `json:"userId" validate:"required"`
	Username string `json:"username" validate:"required,max=64"`
	Language string `json:"language"`
}

type CompetitionStartParam struct {
	EventID string `json:"eventId" validate:"required"`
}

type CompetitionSubmitParam struct {
	EventID   string         `json:"eventId" validate:"required"`
	UserID    uint64         `json:"userId" validate:"required"`
	Username  string         `json:"username" validate:"required,max=64"`
	Level     int            `json:"level" validate:"required,min=1"`
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	TimeTaken float64        `json:"timeTaken" validate:"min=0"`
	Status    string         `json:"status" validate:"required,oneof=completed partial failed timeout"`
}
