package service

import (
	"context"
	"sync"
	"time"

	"github.com/samarth494/Capstone-sub000/model"
)

// sentEvent 测试用桩 hub 记录的一次推送
type sentEvent struct {
	Target  string // connID 或 roomID
	ToRoom  bool
	Event   string
	Payload any
}

type fakeHub struct {
	mu      sync.Mutex
	events  []sentEvent
	members map[string]map[string]bool
}

func newFakeHub() *fakeHub {
	return &fakeHub{members: make(map[string]map[string]bool)}
}

func (h *fakeHub) ToConn(connID, event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, sentEvent{Target: connID, Event: event, Payload: payload})
}

func (h *fakeHub) ToRoom(roomID, event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, sentEvent{Target: roomID, ToRoom: true, Event: event, Payload: payload})
}

func (h *fakeHub) JoinRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.members[roomID] == nil {
		h.members[roomID] = make(map[string]bool)
	}
	h.members[roomID][connID] = true
}

func (h *fakeHub) LeaveRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.members[roomID], connID)
}

// byEvent 按事件名过滤已记录的推送
func (h *fakeHub) byEvent(event string) []sentEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []sentEvent
	for _, e := range h.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (h *fakeHub) count(event string) int {
	return len(h.byEvent(event))
}

type recordedBattle struct {
	RoomID   string
	Players  [2]model.Player
	WinnerID *uint64
	Reason   string
	Replay   []model.ReplayEvent
}

type fakeStats struct {
	mu           sync.Mutex
	battles      []recordedBattle
	competitions map[string][]model.CompetitionResult
	err          error
}

func newFakeStats() *fakeStats {
	return &fakeStats{competitions: make(map[string][]model.CompetitionResult)}
}

func (s *fakeStats) RecordBattle(_ context.Context, roomID string, players [2]model.Player, winnerID *uint64, _, _ time.Time, replay []model.ReplayEvent, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battles = append(s.battles, recordedBattle{
		RoomID:   roomID,
		Players:  players,
		WinnerID: winnerID,
		Reason:   reason,
		Replay:   replay,
	})
	return s.err
}

func (s *fakeStats) RecordCompetition(_ context.Context, eventID string, results []model.CompetitionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.competitions[eventID] = results
	return s.err
}

func (s *fakeStats) GetLeaderboard(context.Context, model.GetLeaderboardParam) (model.GetLeaderboardResponse, error) {
	return model.GetLeaderboardResponse{}, nil
}

func (s *fakeStats) GetReplayURL(context.Context, string) (string, error) {
	return "", ErrReplayNotFound
}

func (s *fakeStats) GetCompetitionResults(context.Context, string) ([]model.CompetitionResult, error) {
	return nil, nil
}

func (s *fakeStats) CleanExpiredArchives(context.Context, time.Time) error {
	return nil
}

func (s *fakeStats) battleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.battles)
}

// fakeRunner 固定结果的沙箱桩
type fakeRunner struct {
	mu      sync.Mutex
	result  *model.RunResult
	err     error
	calls   int
	blockCh chan struct{} // 非 nil 时 Execute 阻塞到其关闭
}

func (r *fakeRunner) Execute(ctx context.Context, _, _, _ string) (*model.RunResult, error) {
	r.mu.Lock()
	r.calls++
	block := r.blockCh
	result, err := r.result, r.err
	r.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if result == nil && err == nil {
		result = &model.RunResult{Success: true, ExitCode: 0}
	}
	return result, err
}

// fakeClock 手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
