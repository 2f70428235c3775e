package service

import (
	"github.com/samarth494/Capstone-sub000/model"
	"go.uber.org/zap"
)

// 分数各分量的服务端上限, 客户端上报超出即视为篡改并截断
const (
	participationBonus = 50
	maxCorrectCode     = 1000
	maxSpeedBonus      = 500
	maxEffortBonus     = 150

	// speedWindowSeconds 速度分的线性衰减窗口
	speedWindowSeconds = 300.0
	// latencyBufferSeconds 客户端计时允许比服务端快的余量
	latencyBufferSeconds = 5.0
)

// ScoreValidator 对客户端上报的分数逐项复核. 客户端的 breakdown 只是
// 声明, 不可信任; 服务端以自己测得的关卡耗时为准重算.
type ScoreValidator struct {
	log *zap.Logger
}

func NewScoreValidator(log *zap.Logger) *ScoreValidator {
	return &ScoreValidator{log: log}
}

// Validate 校验一次关卡提交. serverElapsed 为服务端测得的
// 关卡开始到提交的耗时(秒), 客户端声明的耗时不能比它快出余量.
func (v *ScoreValidator) Validate(param model.CompetitionSubmitParam, serverElapsed float64) model.LevelSubmission {
	status := model.SubmissionStatus(param.Status)
	claimed := param.Breakdown

	timeTaken := param.TimeTaken
	if timeTaken < serverElapsed-latencyBufferSeconds {
		v.log.Warn("submission time claim below server elapsed, overriding",
			zap.Uint64("userId", param.UserID),
			zap.Float64("claimed", timeTaken),
			zap.Float64("serverElapsed", serverElapsed))
		timeTaken = serverElapsed
	}

	breakdown := model.ScoreBreakdown{
		CorrectCode: clampInt(claimed.CorrectCode, 0, maxCorrectCode),
		EffortBonus: clampInt(claimed.EffortBonus, 0, maxEffortBonus),
		ErrorCount:  maxInt(claimed.ErrorCount, 0),
		TestsTotal:  maxInt(claimed.TestsTotal, 0),
	}
	breakdown.TestsPassed = clampInt(claimed.TestsPassed, 0, breakdown.TestsTotal)

	if status != model.SubmissionTimeout {
		breakdown.ParticipationBonus = participationBonus
	}

	// 速度分取客户端声明与服务端重算两者的较小值
	recomputed := v.recomputeSpeedBonus(status, breakdown, timeTaken)
	breakdown.SpeedBonus = minInt(clampInt(claimed.SpeedBonus, 0, maxSpeedBonus), recomputed)

	score := breakdown.ParticipationBonus + breakdown.CorrectCode +
		breakdown.SpeedBonus + breakdown.EffortBonus

	if score != param.Score {
		v.log.Warn("submission score rewritten after validation",
			zap.Uint64("userId", param.UserID),
			zap.Int("claimed", param.Score),
			zap.Int("validated", score))
	}

	return model.LevelSubmission{
		UserID:    param.UserID,
		Username:  param.Username,
		Score:     score,
		Breakdown: breakdown,
		TimeTaken: timeTaken,
		Status:    status,
	}
}

// recomputeSpeedBonus 按提交质量定上限, 在衰减窗口内随耗时线性递减到 0
func (v *ScoreValidator) recomputeSpeedBonus(status model.SubmissionStatus, b model.ScoreBreakdown, timeTaken float64) int {
	var ceiling float64
	switch {
	case status == model.SubmissionCompleted && b.TestsTotal > 0 && b.TestsPassed == b.TestsTotal:
		ceiling = 500
	case b.TestsPassed > 0:
		ceiling = 300
	case b.EffortBonus > 0:
		ceiling = 150
	default:
		return 0
	}
	if timeTaken >= speedWindowSeconds {
		return 0
	}
	return int(ceiling * (speedWindowSeconds - timeTaken) / speedWindowSeconds)
}

// ForfeitSubmission 关卡宽限到点仍未提交的玩家按超时计, 零分但保留排名资格
func ForfeitSubmission(p model.Player, serverElapsed float64) model.LevelSubmission {
	return model.LevelSubmission{
		UserID:    p.UserID,
		Username:  p.Username,
		Score:     0,
		Breakdown: model.ScoreBreakdown{},
		TimeTaken: serverElapsed,
		Status:    model.SubmissionTimeout,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
