package model

import "time"

type SubmissionStatus string

const (
	SubmissionCompleted SubmissionStatus = "completed"
	SubmissionPartial   SubmissionStatus = "partial"
	SubmissionFailed    SubmissionStatus = "failed"
	SubmissionTimeout   SubmissionStatus = "timeout"
)

// Priority 状态优先级, 关卡排名比较链的第二因子
func (s SubmissionStatus) Priority() int {
	switch s {
	case SubmissionCompleted:
		return 3
	case SubmissionPartial:
		return 2
	case SubmissionFailed:
		return 1
	case SubmissionTimeout:
		return 0
	}
	return 0
}

// ScoreBreakdown 单次提交的分数构成, 客户端上报值仅作参考, 服务端逐项重算
type ScoreBreakdown struct {
	ParticipationBonus int `json:"participationBonus"`
	CorrectCode        int `json:"correctCode"`
	SpeedBonus         int `json:"speedBonus"`
	EffortBonus        int `json:"effortBonus"`
	RelativeBonus      int `json:"relativeBonus"`
	ErrorCount         int `json:"errorCount"`
	TestsPassed        int `json:"testsPassed"`
	TestsTotal         int `json:"testsTotal"`
}

// LevelSubmission 赛事单关卡提交
type LevelSubmission struct {
	UserID    uint64           `json:"userId"`
	Username  string           `json:"username"`
	Score     int              `json:"score"`
	Breakdown ScoreBreakdown   `json:"breakdown"`
	TimeTaken float64          `json:"timeTaken"` // 单位: 秒
	Status    SubmissionStatus `json:"status"`
}

// LeaderboardEntry 关卡/累计排行榜条目
type LeaderboardEntry struct {
	UserID     uint64 `json:"userId"`
	Username   string `json:"username"`
	Score      int    `json:"score"`
	TotalScore int    `json:"totalScore,omitempty"`
}

// CompetitionResult 赛事最终成绩, 赛事结束时落库
type CompetitionResult struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	EventID    string `gorm:"type:varchar(64);index"`
	UserID     uint64 `gorm:"index"`
	Username   string `gorm:"type:varchar(64)"`
	TotalScore int
	FinalRank  int
	Levels     string `gorm:"type:text"` // 各关卡得分 JSON
	CreatedAt  time.Time
}

func (CompetitionResult) TableName() string {
	return "competition_result"
}

type GetCompetitionResultsParam struct {
	EventID string `form:"event_id" binding:"required"`
}

type ExportCompetitionDataParam struct {
	EventID  string `form:"event_id" binding:"required"`
	Exporter string `form:"exporter" binding:"required,oneof=csv xlsx"`
}
