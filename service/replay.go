package service

import (
	"time"

	"github.com/samarth494/Capstone-sub000/model"
)

// 同一玩家连续 code_update 的合并窗口, 持续敲键盘时日志增长有界
const replayCoalesceWindow = 2 * time.Second

// ReplayLog 单个房间的回放事件日志
type ReplayLog struct {
	start  time.Time
	events []model.ReplayEvent
}

func NewReplayLog(start time.Time) *ReplayLog {
	return &ReplayLog{start: start}
}

// Append 追加一条回放事件. 连续的同玩家 code_update 落在合并窗口内时
// 覆盖前一条的数据与时间戳而不是新增.
func (l *ReplayLog) Append(typ model.ReplayEventType, playerID uint64, data string, now time.Time) {
	offset := now.Sub(l.start).Milliseconds()

	if typ == model.ReplayEventCodeUpdate && len(l.events) > 0 {
		last := &l.events[len(l.events)-1]
		if last.Type == model.ReplayEventCodeUpdate &&
			last.PlayerID == playerID &&
			offset-last.TimestampMs <= replayCoalesceWindow.Milliseconds() {
			last.Data = data
			last.TimestampMs = offset
			return
		}
	}

	l.events = append(l.events, model.ReplayEvent{
		Type:        typ,
		PlayerID:    playerID,
		TimestampMs: offset,
		Data:        data,
	})
}

// Snapshot 返回事件列表的拷贝, 供存档使用
func (l *ReplayLog) Snapshot() []model.ReplayEvent {
	out := make([]model.ReplayEvent, len(l.events))
	copy(out, l.events)
	return out
}

func (l *ReplayLog) Len() int {
	return len(l.events)
}
