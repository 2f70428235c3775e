package event

import "encoding/json"

const (
	BattleArchivedTopic      = "battle_archived_topic"
	CompetitionFinishedTopic = "competition_finished_topic"
)

// BattleArchivedMessage 对战存档完成消息, 下游分析消费
type BattleArchivedMessage struct {
	RoomID    string  `json:"room_id"`
	Player1ID uint64  `json:"player1_id"`
	Player2ID uint64  `json:"player2_id"`
	WinnerID  *uint64 `json:"winner_id"`
	Reason    string  `json:"reason"`
	StartedAt int64   `json:"started_at"` // 毫秒时间戳
	EndedAt   int64   `json:"ended_at"`
}

func (m *BattleArchivedMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// CompetitionFinishedMessage 赛事结束消息
type CompetitionFinishedMessage struct {
	EventID     string `json:"event_id"`
	WinnerID    uint64 `json:"winner_id"`
	PlayerCount int    `json:"player_count"`
	TotalLevels int    `json:"total_levels"`
}

func (m *CompetitionFinishedMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}
