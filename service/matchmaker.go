package service

import (
	"context"
	"sync"
	"time"

	"github.com/samarth494/Capstone-sub000/constants"
	"github.com/samarth494/Capstone-sub000/model"
	"go.uber.org/zap"
)

// Matchmaker 匹配器. 周期性扫描等待队列, 按段位差配对, 等待越久允许的段位差越大.
type Matchmaker struct {
	mu    sync.Mutex
	queue []model.QueueEntry

	battles *BattleService
	hub     Broadcaster
	log     *zap.Logger
	widen   time.Duration // 每等待该时长放宽一个段位差
	now     func() time.Time
}

func NewMatchmaker(battles *BattleService, hub Broadcaster, widenSeconds int, log *zap.Logger) *Matchmaker {
	if widenSeconds <= 0 {
		widenSeconds = 15
	}
	return &Matchmaker{
		battles: battles,
		hub:     hub,
		log:     log,
		widen:   time.Duration(widenSeconds) * time.Second,
		now:     time.Now,
	}
}

// Enqueue 玩家加入匹配队列. 重复加入(如双击)替换旧条目, 等待时间重新计算.
func (m *Matchmaker) Enqueue(p model.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.queue {
		if m.queue[i].Player.ConnID == p.ConnID {
			m.queue[i] = model.QueueEntry{Player: p, JoinedAt: m.now()}
			m.log.Info("player re-queued",
				zap.Uint64("userId", p.UserID),
				zap.String("rank", p.Rank.String()))
			return
		}
	}

	m.queue = append(m.queue, model.QueueEntry{Player: p, JoinedAt: m.now()})
	matchmakerQueueDepth.Set(float64(len(m.queue)))
	m.log.Info("player queued",
		zap.Uint64("userId", p.UserID),
		zap.String("rank", p.Rank.String()),
		zap.Int("queueLen", len(m.queue)))
}

// RemoveByConn 连接断开时从队列移除
func (m *Matchmaker) RemoveByConn(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.queue {
		if m.queue[i].Player.ConnID == connID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			matchmakerQueueDepth.Set(float64(len(m.queue)))
			return
		}
	}
}

// Len 当前等待人数
func (m *Matchmaker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Sweep 执行一轮匹配扫描, 由 cron 调度周期触发. 一轮可以产生多组匹配.
func (m *Matchmaker) Sweep(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) < 2 {
		return nil
	}

	now := m.now()
	matched := make([]bool, len(m.queue))
	var remaining []model.QueueEntry

	for i := range m.queue {
		if matched[i] {
			continue
		}
		p1 := m.queue[i]
		allowedGap := int(now.Sub(p1.JoinedAt) / m.widen)

		// 在允许的段位差内选差值最小的对手, 相同差值取先扫描到的
		best := -1
		bestGap := 0
		for j := i + 1; j < len(m.queue); j++ {
			if matched[j] {
				continue
			}
			gap := tierGap(p1.Player.Rank, m.queue[j].Player.Rank)
			if gap > allowedGap {
				continue
			}
			if best == -1 || gap < bestGap {
				best = j
				bestGap = gap
			}
		}

		if best == -1 {
			continue
		}

		matched[i] = true
		matched[best] = true
		m.formMatch(p1.Player, m.queue[best].Player, bestGap)
	}

	for i := range m.queue {
		if !matched[i] {
			remaining = append(remaining, m.queue[i])
		}
	}
	m.queue = remaining
	matchmakerQueueDepth.Set(float64(len(m.queue)))
	return nil
}

func (m *Matchmaker) formMatch(p1, p2 model.Player, gap int) {
	room := m.battles.CreateRoom(p1, p2)

	m.log.Info("match formed",
		zap.String("roomId", room.ID),
		zap.Uint64("player1", p1.UserID),
		zap.Uint64("player2", p2.UserID),
		zap.Int("tierGap", gap))

	m.hub.ToConn(p1.ConnID, constants.MsgMatchFound, matchFoundPayload{
		RoomID:   room.ID,
		Opponent: opponentInfo{Username: p2.Username, Rank: p2.Rank.String()},
	})
	m.hub.ToConn(p2.ConnID, constants.MsgMatchFound, matchFoundPayload{
		RoomID:   room.ID,
		Opponent: opponentInfo{Username: p1.Username, Rank: p1.Rank.String()},
	})
}

func tierGap(a, b model.RankTier) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

type opponentInfo struct {
	Username string `json:"username"`
	Rank     string `json:"rank"`
}

type matchFoundPayload struct {
	RoomID   string       `json:"roomId"`
	Opponent opponentInfo `json:"opponent"`
}
