package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/constants"
	"github.com/samarth494/Capstone-sub000/model"
	"github.com/samarth494/Capstone-sub000/pkg/execpool"
	"github.com/samarth494/Capstone-sub000/pkg/sandbox"
	"go.uber.org/zap"
)

// BattleRoom 1v1 限时对战房间
type BattleRoom struct {
	mu sync.Mutex

	ID               string
	Players          [2]model.Player
	joined           map[string]bool // 已加入的连接, 按 connID
	Status           model.BattleStatus
	StartTime        time.Time // 双方都加入后开始计时
	RemainingSeconds int
	ProblemID        string
	WinnerConnID     string
	CreatedAt        time.Time

	timer     *roomTimer
	replay    *ReplayLog
	persisted bool
}

func (r *BattleRoom) bothJoined() bool {
	return r.joined[r.Players[0].ConnID] && r.joined[r.Players[1].ConnID]
}

func (r *BattleRoom) playerByConn(connID string) (model.Player, bool) {
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p, true
		}
	}
	return model.Player{}, false
}

func (r *BattleRoom) opponentOf(connID string) (model.Player, bool) {
	if r.Players[0].ConnID == connID {
		return r.Players[1], true
	}
	if r.Players[1].ConnID == connID {
		return r.Players[0], true
	}
	return model.Player{}, false
}

// battleOutcome 终态转换的快照, 在锁外做持久化
type battleOutcome struct {
	roomID   string
	players  [2]model.Player
	winnerID *uint64
	reason   string
	start    time.Time
	end      time.Time
	replay   []model.ReplayEvent
}

// BattleService 对战房间状态机的编排层
type BattleService struct {
	mu    sync.RWMutex
	rooms map[string]*BattleRoom

	hub    Broadcaster
	pool   *execpool.Pool
	runner sandbox.Runner
	stats  StatsService
	log    *zap.Logger
	cfg    config.BattleConfig

	now func() time.Time
	// tickInterval 可在测试中缩短
	tickInterval time.Duration
}

func NewBattleService(hub Broadcaster, pool *execpool.Pool, runner sandbox.Runner, stats StatsService, cfg config.BattleConfig, log *zap.Logger) *BattleService {
	if cfg.DurationSeconds <= 0 {
		cfg.DurationSeconds = 60
	}
	if cfg.JoinGraceSeconds <= 0 {
		cfg.JoinGraceSeconds = 120
	}
	return &BattleService{
		rooms:        make(map[string]*BattleRoom),
		hub:          hub,
		pool:         pool,
		runner:       runner,
		stats:        stats,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
		tickInterval: time.Second,
	}
}

var battleProblems = []string{
	"two-sum", "valid-parentheses", "merge-intervals",
	"longest-substring", "binary-search", "reverse-linked-list",
}

// CreateRoom 由匹配器调用, 创建对战房间, 等待双方加入后才开始计时
func (s *BattleService) CreateRoom(p1, p2 model.Player) *BattleRoom {
	room := &BattleRoom{
		ID:               uuid.New().String(),
		Players:          [2]model.Player{p1, p2},
		joined:           make(map[string]bool, 2),
		Status:           model.BattleStatusActive,
		RemainingSeconds: s.cfg.DurationSeconds,
		ProblemID:        battleProblems[rand.Intn(len(battleProblems))],
		CreatedAt:        s.now(),
	}

	s.mu.Lock()
	s.rooms[room.ID] = room
	s.mu.Unlock()

	battleRoomsCreatedTotal.Inc()
	return room
}

func (s *BattleService) room(roomID string) (*BattleRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

func (s *BattleService) removeRoom(roomID string) {
	s.mu.Lock()
	delete(s.rooms, roomID)
	s.mu.Unlock()
}

// HandleJoin 玩家(或刷新后的重连)宣告到场. 双方首次都到场时启动倒计时,
// 重复宣告幂等, 不会重启计时器.
func (s *BattleService) HandleJoin(roomID, connID, username string) error {
	room, ok := s.room(roomID)
	if !ok {
		s.hub.ToConn(connID, constants.MsgBattleError, errorPayload{Message: "room not found, it may have expired"})
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, ok := room.playerByConn(connID)
	if !ok {
		s.hub.ToConn(connID, constants.MsgBattleError, errorPayload{Message: "you are not a player in this room"})
		return ErrRoomNotFound
	}

	s.hub.JoinRoom(roomID, connID)

	if opp, ok := room.opponentOf(connID); ok {
		s.hub.ToConn(connID, constants.MsgBattleOpponentInfo, opponentInfo{Username: opp.Username, Rank: opp.Rank.String()})
		s.hub.ToConn(opp.ConnID, constants.MsgBattleOpponentInfo, opponentInfo{Username: player.Username, Rank: player.Rank.String()})
	}

	alreadyCounting := room.bothJoined()
	room.joined[connID] = true

	if room.bothJoined() && !alreadyCounting && room.timer == nil {
		room.StartTime = s.now()
		room.replay = NewReplayLog(room.StartTime)
		roomID := room.ID
		room.timer = newRoomTimer(s.tickInterval, func() { s.tick(roomID) })

		s.hub.ToRoom(roomID, constants.MsgBattleStartTimer, startTimerPayload{
			Duration:  room.RemainingSeconds,
			ProblemID: room.ProblemID,
		})
		s.log.Info("battle countdown started",
			zap.String("roomId", roomID),
			zap.String("problemId", room.ProblemID))
	}
	return nil
}

// tick 每秒递减剩余时间, 归零转入 timeout 终态(平局)
func (s *BattleService) tick(roomID string) {
	room, ok := s.room(roomID)
	if !ok {
		return
	}

	var outcome *battleOutcome
	room.mu.Lock()
	if room.Status != model.BattleStatusActive || !room.bothJoined() {
		room.mu.Unlock()
		return
	}
	room.RemainingSeconds--
	if room.RemainingSeconds > 0 {
		s.hub.ToRoom(roomID, constants.MsgBattleTimerUpdate, timerUpdatePayload{
			TimeLeft:  room.RemainingSeconds,
			ProblemID: room.ProblemID,
		})
		room.mu.Unlock()
		return
	}

	outcome = s.finalizeLocked(room, model.BattleStatusTimeout, "", constants.BattleReasonTimeout)
	room.mu.Unlock()

	s.hub.ToRoom(roomID, constants.MsgBattleEnd, battleEndPayload{Reason: constants.BattleReasonTimeout})
	s.settle(outcome)
}

// HandleTyping 纯转发的临场提示, 不改房间状态
func (s *BattleService) HandleTyping(roomID, connID string) {
	s.relay(roomID, connID, constants.MsgBattleOpponentTyping)
}

func (s *BattleService) HandleRunTests(roomID, connID string) {
	s.relay(roomID, connID, constants.MsgBattleOpponentRunTests)
}

func (s *BattleService) HandleAttempt(roomID, connID string) {
	s.relay(roomID, connID, constants.MsgBattleOpponentAttempt)
}

func (s *BattleService) relay(roomID, connID, event string) {
	room, ok := s.room(roomID)
	if !ok {
		return
	}
	room.mu.Lock()
	opp, found := room.opponentOf(connID)
	room.mu.Unlock()
	if found {
		s.hub.ToConn(opp.ConnID, event, nil)
	}
}

// HandleCodeUpdate 追加回放日志, 不影响计时与状态
func (s *BattleService) HandleCodeUpdate(roomID, connID, code string) {
	room, ok := s.room(roomID)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	player, found := room.playerByConn(connID)
	if !found || room.replay == nil {
		return
	}
	room.replay.Append(model.ReplayEventCodeUpdate, player.UserID, code, s.now())
}

// HandleSubmit 提交代码. dryRun 只把结果回给提交方; 正式提交成功且房间仍在
// 进行中时判定胜负. 房间非 active 时提交被静默忽略, 不会二次终结.
func (s *BattleService) HandleSubmit(ctx context.Context, roomID, connID string, param model.BattleSubmitParam) {
	room, ok := s.room(roomID)
	if !ok {
		s.hub.ToConn(connID, constants.MsgBattleError, errorPayload{Message: "room not found, it may have expired"})
		return
	}

	room.mu.Lock()
	if room.Status != model.BattleStatusActive {
		room.mu.Unlock()
		return
	}
	player, found := room.playerByConn(connID)
	if !found {
		room.mu.Unlock()
		return
	}
	if !param.DryRun && room.replay != nil {
		room.replay.Append(model.ReplayEventSubmission, player.UserID, param.Code, s.now())
	}
	room.mu.Unlock()

	// 在锁外等待沙箱结果, 其他房间与匹配扫描不受阻塞
	result, err := s.pool.Submit(ctx, func(ctx context.Context) (*model.RunResult, error) {
		return s.runner.Execute(ctx, param.Language, param.Code, "")
	})
	if err != nil {
		if errors.Is(err, execpool.ErrQueueFull) {
			s.hub.ToConn(connID, constants.MsgBattleError, errorPayload{
				Message: "server is at capacity, please retry in a moment",
			})
			return
		}
		// 执行期错误作为结果负载回给提交方, 不进入房间状态
		s.hub.ToConn(connID, constants.MsgBattleExecutionResult, executionResultPayload{
			Success: false,
			Stderr:  err.Error(),
		})
		return
	}

	s.hub.ToConn(connID, constants.MsgBattleExecutionResult, executionResultPayload{
		Success:       result.Success,
		Stdout:        result.Stdout,
		Stderr:        result.Stderr,
		ExitCode:      result.ExitCode,
		ExecutionTime: result.ExecutionTime,
	})

	if param.DryRun || !result.Success {
		return
	}

	var outcome *battleOutcome
	room.mu.Lock()
	// 等待执行期间房间可能已被终结
	if room.Status != model.BattleStatusActive {
		room.mu.Unlock()
		return
	}
	outcome = s.finalizeLocked(room, model.BattleStatusEnded, connID, constants.BattleReasonSolved)
	room.mu.Unlock()

	s.hub.ToRoom(roomID, constants.MsgBattleResult, battleResultPayload{
		WinnerID:   player.UserID,
		WinnerName: player.Username,
		Reason:     constants.BattleReasonSolved,
	})
	s.settle(outcome)
}

// HandleDisconnect 对战中玩家断开: 双方都已加入则对手直接胜出;
// 对手从未加入则按无效对局丢弃, 不计战绩.
func (s *BattleService) HandleDisconnect(connID string) {
	s.mu.RLock()
	var room *BattleRoom
	for _, r := range s.rooms {
		if _, ok := r.playerByConn(connID); ok {
			room = r
			break
		}
	}
	s.mu.RUnlock()
	if room == nil {
		return
	}

	var outcome *battleOutcome
	room.mu.Lock()
	if room.Status != model.BattleStatusActive {
		room.mu.Unlock()
		return
	}

	opp, _ := room.opponentOf(connID)
	if !room.bothJoined() {
		// 对局从未真正开始, 无胜负
		if room.timer != nil {
			room.timer.Cancel()
		}
		room.Status = model.BattleStatusEnded
		room.persisted = true
		room.mu.Unlock()

		s.hub.ToConn(opp.ConnID, constants.MsgBattleEnd, battleEndPayload{Reason: constants.BattleReasonOpponentLeft})
		s.removeRoom(room.ID)
		return
	}

	outcome = s.finalizeLocked(room, model.BattleStatusEnded, opp.ConnID, constants.BattleReasonOpponentLeft)
	room.mu.Unlock()

	s.hub.ToRoom(room.ID, constants.MsgBattleResult, battleResultPayload{
		WinnerID:   opp.UserID,
		WinnerName: opp.Username,
		Reason:     constants.BattleReasonOpponentLeft,
	})
	s.settle(outcome)
}

// ReapStale 清理超过宽限期仍未开始(双方未到齐)的房间, cron 周期调用.
// 保证客户端不会无限等待一个服务端已经放弃的房间.
func (s *BattleService) ReapStale(ctx context.Context) error {
	cutoff := s.now().Add(-time.Duration(s.cfg.JoinGraceSeconds) * time.Second)

	s.mu.RLock()
	var stale []*BattleRoom
	for _, r := range s.rooms {
		stale = append(stale, r)
	}
	s.mu.RUnlock()

	for _, room := range stale {
		room.mu.Lock()
		if room.Status != model.BattleStatusActive || room.bothJoined() || !room.CreatedAt.Before(cutoff) {
			room.mu.Unlock()
			continue
		}
		if room.timer != nil {
			room.timer.Cancel()
		}
		room.Status = model.BattleStatusTimeout
		room.persisted = true
		roomID := room.ID
		room.mu.Unlock()

		s.hub.ToRoom(roomID, constants.MsgBattleEnd, battleEndPayload{Reason: constants.BattleReasonTimeout})
		s.removeRoom(roomID)
		s.log.Info("reaped stale battle room", zap.String("roomId", roomID))
	}
	return nil
}

// RoomCount 当前在内存中的房间数
func (s *BattleService) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// finalizeLocked 终态转换. 调用方必须持有 room.mu 且 Status 为 active.
// persisted 守卫保证战绩只落一次, 计时器恰好取消一次.
func (s *BattleService) finalizeLocked(room *BattleRoom, status model.BattleStatus, winnerConnID, reason string) *battleOutcome {
	if room.persisted {
		return nil
	}
	room.persisted = true
	room.Status = status
	room.WinnerConnID = winnerConnID
	if room.timer != nil {
		room.timer.Cancel()
	}

	var winnerID *uint64
	if winnerConnID != "" {
		if p, ok := room.playerByConn(winnerConnID); ok {
			id := p.UserID
			winnerID = &id
		}
	}

	var replay []model.ReplayEvent
	if room.replay != nil {
		replay = room.replay.Snapshot()
	}

	battleRoomsFinishedTotal.WithLabelValues(reason).Inc()
	return &battleOutcome{
		roomID:   room.ID,
		players:  room.Players,
		winnerID: winnerID,
		reason:   reason,
		start:    room.StartTime,
		end:      s.now(),
		replay:   replay,
	}
}

// settle 终态后的持久化与清理. 持久化失败只记日志, 房间结论已经广播, 不回滚.
func (s *BattleService) settle(outcome *battleOutcome) {
	if outcome == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.stats.RecordBattle(ctx, outcome.roomID, outcome.players, outcome.winnerID, outcome.start, outcome.end, outcome.replay, outcome.reason); err != nil {
		s.log.Error("failed to persist battle stats",
			zap.String("roomId", outcome.roomID),
			zap.Error(err))
	}
	s.removeRoom(outcome.roomID)
}

type errorPayload struct {
	Message string `json:"message"`
}

type startTimerPayload struct {
	Duration  int    `json:"duration"`
	ProblemID string `json:"problemId"`
}

type timerUpdatePayload struct {
	TimeLeft  int    `json:"timeLeft"`
	ProblemID string `json:"problemId,omitempty"`
}

type executionResultPayload struct {
	Success       bool   `json:"success"`
	Stdout        string `json:"stdout,omitempty"`
	Stderr        string `json:"stderr,omitempty"`
	ExitCode      int    `json:"exitCode"`
	ExecutionTime int64  `json:"executionTime"`
}

type battleEndPayload struct {
	Reason string `json:"reason"`
}

type battleResultPayload struct {
	WinnerID   uint64 `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	Reason     string `json:"reason"`
}
