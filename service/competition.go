package service

import (
	"context"
	"sort"
	"sync"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/constants"
	"github.com/samarth494/Capstone-sub000/model"
	"go.uber.org/zap"
)

// CompetitionRoom 多人多关卡赛事房间
// 状态流转: lobby -> countdown -> level_active(×totalLevels) -> finished
type CompetitionRoom struct {
	mu sync.Mutex

	EventID string
	// players 按加入顺序, 首位即房主. 累计榜同分按此顺序排名.
	players []model.Player
	HostID  uint64

	Started        bool
	Finished       bool
	CurrentLevel   int
	TotalLevels    int
	LevelStartedAt time.Time

	LobbyRemaining int
	lobbyTimer     *roomTimer

	// submissions[level][userID], 每个 (level, userID) 至多一条
	submissions map[int]map[uint64]model.LevelSubmission
	cumulative  map[uint64]int
	joinOrder   map[uint64]int
	nextJoinSeq int

	CreatedAt time.Time
	persisted bool
}

func (r *CompetitionRoom) playerIndex(userID uint64) int {
	for i := range r.players {
		if r.players[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (r *CompetitionRoom) playerByConn(connID string) (model.Player, bool) {
	for _, p := range r.players {
		if p.ConnID == connID {
			return p, true
		}
	}
	return model.Player{}, false
}

func (r *CompetitionRoom) levelSubs(level int) map[uint64]model.LevelSubmission {
	m, ok := r.submissions[level]
	if !ok {
		m = make(map[uint64]model.LevelSubmission)
		r.submissions[level] = m
	}
	return m
}

// CompetitionService 赛事房间编排层
type CompetitionService struct {
	mu    sync.RWMutex
	rooms map[string]*CompetitionRoom

	hub       Broadcaster
	validator *ScoreValidator
	stats     StatsService
	log       *zap.Logger
	cfg       config.CompetitionConfig

	now          func() time.Time
	tickInterval time.Duration
}

func NewCompetitionService(hub Broadcaster, validator *ScoreValidator, stats StatsService, cfg config.CompetitionConfig, log *zap.Logger) *CompetitionService {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 8
	}
	if cfg.LobbySeconds <= 0 {
		cfg.LobbySeconds = 300
	}
	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = 10
	}
	if cfg.TotalLevels <= 0 {
		cfg.TotalLevels = 3
	}
	if cfg.LevelGraceSeconds <= 0 {
		cfg.LevelGraceSeconds = 5
	}
	return &CompetitionService{
		rooms:        make(map[string]*CompetitionRoom),
		hub:          hub,
		validator:    validator,
		stats:        stats,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
		tickInterval: time.Second,
	}
}

var competitionProblems = []string{
	"fizzbuzz-sprint", "anagram-check", "matrix-rotate",
	"lru-cache", "word-ladder",
}

func (s *CompetitionService) room(eventID string) (*CompetitionRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[eventID]
	return r, ok
}

func (s *CompetitionService) removeRoom(eventID string) {
	s.mu.Lock()
	delete(s.rooms, eventID)
	competitionRoomsActive.Set(float64(len(s.rooms)))
	s.mu.Unlock()
}

// HandleJoin 加入赛事大厅. 首个加入者创建房间并成为房主, 大厅计时到点自动开赛.
// 同一 userId 重连只原位更新连接, 不占新席位.
func (s *CompetitionService) HandleJoin(connID string, param model.CompetitionJoinParam) error {
	s.mu.Lock()
	room, ok := s.rooms[param.EventID]
	if !ok {
		room = &CompetitionRoom{
			EventID:        param.EventID,
			TotalLevels:    s.cfg.TotalLevels,
			LobbyRemaining: s.cfg.LobbySeconds,
			submissions:    make(map[int]map[uint64]model.LevelSubmission),
			cumulative:     make(map[uint64]int),
			joinOrder:      make(map[uint64]int),
			CreatedAt:      s.now(),
		}
		eventID := param.EventID
		room.lobbyTimer = newRoomTimer(s.tickInterval, func() { s.lobbyTick(eventID) })
		s.rooms[param.EventID] = room
		competitionRoomsActive.Set(float64(len(s.rooms)))
		s.log.Info("competition room created", zap.String("eventId", param.EventID))
	}
	s.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()

	if idx := room.playerIndex(param.UserID); idx >= 0 {
		// 重连, 原位换连接
		old := room.players[idx].ConnID
		room.players[idx].ConnID = connID
		room.players[idx].Username = param.Username
		s.hub.LeaveRoom(param.EventID, old)
		s.hub.JoinRoom(param.EventID, connID)
		s.broadcastLobbyLocked(room)
		return nil
	}

	if room.Started {
		s.hub.ToConn(connID, constants.MsgCompetitionError, errorPayload{Message: "competition already started"})
		return ErrAlreadyStarted
	}
	if len(room.players) >= s.cfg.MaxPlayers {
		s.hub.ToConn(connID, constants.MsgCompetitionError, errorPayload{Message: "competition lobby is full"})
		return ErrLobbyFull
	}

	p := model.Player{ConnID: connID, UserID: param.UserID, Username: param.Username}
	room.players = append(room.players, p)
	room.joinOrder[p.UserID] = room.nextJoinSeq
	room.nextJoinSeq++
	if len(room.players) == 1 {
		room.HostID = p.UserID
	}
	s.hub.JoinRoom(param.EventID, connID)
	s.broadcastLobbyLocked(room)

	s.log.Info("player joined competition",
		zap.String("eventId", param.EventID),
		zap.Uint64("userId", param.UserID),
		zap.Int("players", len(room.players)))

	if len(room.players) >= s.cfg.MaxPlayers {
		s.startLocked(room)
	}
	return nil
}

func (s *CompetitionService) broadcastLobbyLocked(room *CompetitionRoom) {
	list := make([]competitionPlayer, 0, len(room.players))
	for _, p := range room.players {
		list = append(list, competitionPlayer{UserID: p.UserID, Username: p.Username})
	}
	s.hub.ToRoom(room.EventID, constants.MsgCompetitionPlayers, updatePlayersPayload{Players: list})
	s.hub.ToRoom(room.EventID, constants.MsgCompetitionHostInfo, hostInfoPayload{HostID: room.HostID})
}

// lobbyTick 大厅倒计时, 归零且有人在场则自动开赛
func (s *CompetitionService) lobbyTick(eventID string) {
	room, ok := s.room(eventID)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Started || room.Finished {
		return
	}
	room.LobbyRemaining--
	if room.LobbyRemaining > 0 {
		s.hub.ToRoom(eventID, constants.MsgCompetitionTimerUpdate, competitionTimerPayload{Seconds: room.LobbyRemaining})
		return
	}

	if len(room.players) == 0 {
		room.lobbyTimer.Cancel()
		room.Finished = true
		s.removeRoom(eventID)
		return
	}
	s.startLocked(room)
}

// HandleStart 房主手动开赛
func (s *CompetitionService) HandleStart(connID string, param model.CompetitionStartParam) error {
	room, ok := s.room(param.EventID)
	if !ok {
		s.hub.ToConn(connID, constants.MsgCompetitionError, errorPayload{Message: "competition not found, it may have expired"})
		return ErrEventNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	caller, found := room.playerByConn(connID)
	if !found || caller.UserID != room.HostID {
		s.hub.ToConn(connID, constants.MsgCompetitionError, errorPayload{Message: "only the host can start the competition"})
		return ErrNotHost
	}
	if room.Started {
		s.hub.ToConn(connID, constants.MsgCompetitionError, errorPayload{Message: "competition already started"})
		return ErrAlreadyStarted
	}
	s.startLocked(room)
	return nil
}

// startLocked 三种触发(满员/大厅超时/房主)共用的开赛转换. 须持有 room.mu.
func (s *CompetitionService) startLocked(room *CompetitionRoom) {
	room.Started = true
	room.lobbyTimer.Cancel()
	room.CurrentLevel = 1

	now := s.now()
	startsAt := now.Add(time.Duration(s.cfg.CountdownSeconds) * time.Second)
	room.LevelStartedAt = startsAt

	// 广播绝对开赛时刻和服务端当前时钟, 客户端据此修正本地时钟偏移
	s.hub.ToRoom(room.EventID, constants.MsgCompetitionRoundStarted, roundStartedPayload{
		BattleStartsAt:   startsAt.UnixMilli(),
		ServerTime:       now.UnixMilli(),
		CountdownSeconds: s.cfg.CountdownSeconds,
		ProblemID:        competitionProblems[(room.CurrentLevel-1)%len(competitionProblems)],
		Level:            room.CurrentLevel,
		TotalLevels:      room.TotalLevels,
	})
	s.log.Info("competition started",
		zap.String("eventId", room.EventID),
		zap.Int("players", len(room.players)))
}

// HandleSubmit 接收关卡提交. 每个 (level, userId) 只收第一条, 重复静默丢弃.
// 分数先过服务端校验再入账, 当前关卡收齐即结算.
func (s *CompetitionService) HandleSubmit(connID string, param model.CompetitionSubmitParam) error {
	room, ok := s.room(param.EventID)
	if !ok {
		s.hub.ToConn(connID, constants.MsgCompetitionError, errorPayload{Message: "competition not found, it may have expired"})
		return ErrEventNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.Started || room.Finished {
		return nil
	}
	if param.Level != room.CurrentLevel {
		s.log.Info("discarding submission for wrong level",
			zap.String("eventId", param.EventID),
			zap.Uint64("userId", param.UserID),
			zap.Int("level", param.Level),
			zap.Int("currentLevel", room.CurrentLevel))
		return nil
	}
	if room.playerIndex(param.UserID) < 0 {
		return nil
	}

	subs := room.levelSubs(room.CurrentLevel)
	if _, dup := subs[param.UserID]; dup {
		return nil
	}

	elapsed := s.now().Sub(room.LevelStartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	sub := s.validator.Validate(param, elapsed)
	subs[param.UserID] = sub

	s.hub.ToRoom(param.EventID, constants.MsgCompetitionSubmitted, playerSubmittedPayload{
		UserID:         param.UserID,
		Username:       param.Username,
		TotalSubmitted: len(subs),
		TotalPlayers:   len(room.players),
		Level:          room.CurrentLevel,
	})

	if s.levelCompleteLocked(room) {
		s.completeLevelLocked(room)
	}
	return nil
}

// levelCompleteLocked 当前在场的每名玩家都已有本关提交
func (s *CompetitionService) levelCompleteLocked(room *CompetitionRoom) bool {
	if len(room.players) == 0 {
		return false
	}
	subs := room.levelSubs(room.CurrentLevel)
	for _, p := range room.players {
		if _, ok := subs[p.UserID]; !ok {
			return false
		}
	}
	return true
}

// completeLevelLocked 关卡结算: 计算相对表现加分, 更新累计分, 广播两份榜单,
// 推进到下一关或结束赛事.
func (s *CompetitionService) completeLevelLocked(room *CompetitionRoom) {
	level := room.CurrentLevel
	subs := room.levelSubs(level)

	ranked := make([]model.LevelSubmission, 0, len(subs))
	for _, sub := range subs {
		ranked = append(ranked, sub)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return lessBySkill(ranked[i], ranked[j])
	})

	n := len(ranked)
	for i := range ranked {
		bonus := 0
		if n > 1 {
			bonus = (n - 1 - i) * 500 / (n - 1)
		}
		ranked[i].Breakdown.RelativeBonus = bonus
		ranked[i].Score += bonus
		subs[ranked[i].UserID] = ranked[i]
		room.cumulative[ranked[i].UserID] += ranked[i].Score
	}

	levelBoard := make([]model.LeaderboardEntry, 0, n)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return lessBySkill(ranked[i], ranked[j])
	})
	for _, sub := range ranked {
		levelBoard = append(levelBoard, model.LeaderboardEntry{
			UserID:   sub.UserID,
			Username: sub.Username,
			Score:    sub.Score,
		})
	}

	cumBoard := s.cumulativeBoardLocked(room)

	if level < room.TotalLevels {
		room.CurrentLevel++
		// 给客户端留出查看本关榜单的缓冲
		room.LevelStartedAt = s.now().Add(time.Duration(s.cfg.LevelGraceSeconds) * time.Second)
		s.hub.ToRoom(room.EventID, constants.MsgCompetitionLevelDone, levelCompletePayload{
			EventID:               room.EventID,
			Level:                 level,
			LevelLeaderboard:      levelBoard,
			CumulativeLeaderboard: cumBoard,
			NextLevel:             room.CurrentLevel,
			TotalLevels:           room.TotalLevels,
		})
		s.log.Info("competition level complete",
			zap.String("eventId", room.EventID),
			zap.Int("level", level),
			zap.Int("nextLevel", room.CurrentLevel))
		return
	}

	room.Finished = true
	var winner *model.LeaderboardEntry
	if len(cumBoard) > 0 {
		winner = &cumBoard[0]
	}
	s.hub.ToRoom(room.EventID, constants.MsgCompetitionEnd, competitionEndPayload{
		EventID:               room.EventID,
		Level:                 level,
		LevelLeaderboard:      levelBoard,
		CumulativeLeaderboard: cumBoard,
		Winner:                winner,
	})
	s.log.Info("competition finished", zap.String("eventId", room.EventID))

	s.persistLocked(room, cumBoard)
	s.removeRoom(room.EventID)
}

// lessBySkill 关卡排名比较链: 通过用例数 > 状态优先级 > 努力分 > 错误数 > 耗时.
// 努力分排在错误数之前, 真实尝试即便出错也压过空壳提交.
func lessBySkill(a, b model.LevelSubmission) bool {
	if a.Breakdown.TestsPassed != b.Breakdown.TestsPassed {
		return a.Breakdown.TestsPassed > b.Breakdown.TestsPassed
	}
	if a.Status.Priority() != b.Status.Priority() {
		return a.Status.Priority() > b.Status.Priority()
	}
	if a.Breakdown.EffortBonus != b.Breakdown.EffortBonus {
		return a.Breakdown.EffortBonus > b.Breakdown.EffortBonus
	}
	if a.Breakdown.ErrorCount != b.Breakdown.ErrorCount {
		return a.Breakdown.ErrorCount < b.Breakdown.ErrorCount
	}
	return a.TimeTaken < b.TimeTaken
}

// cumulativeBoardLocked 累计榜, 同分按加入顺序
func (s *CompetitionService) cumulativeBoardLocked(room *CompetitionRoom) []model.LeaderboardEntry {
	type row struct {
		userID   uint64
		username string
		total    int
		seq      int
	}
	rows := make([]row, 0, len(room.cumulative))
	names := make(map[uint64]string, len(room.players))
	for _, p := range room.players {
		names[p.UserID] = p.Username
	}
	for _, lvl := range room.submissions {
		for id, sub := range lvl {
			if _, ok := names[id]; !ok {
				names[id] = sub.Username
			}
		}
	}
	for id, total := range room.cumulative {
		rows = append(rows, row{userID: id, username: names[id], total: total, seq: room.joinOrder[id]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].seq < rows[j].seq
	})

	board := make([]model.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		board = append(board, model.LeaderboardEntry{
			UserID:     r.userID,
			Username:   r.username,
			TotalScore: r.total,
		})
	}
	return board
}

// HandleDisconnect 玩家断开.
// 大厅期: 移除席位, 必要时移交房主, 空房删除.
// 关卡进行期: 先移除席位, 再为未提交者补一条超时弃权, 随后立即走收齐检查,
// 避免全场等待一个永远不会回应的客户端.
func (s *CompetitionService) HandleDisconnect(connID string) {
	s.mu.RLock()
	var room *CompetitionRoom
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

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Finished {
		return
	}

	player, found := room.playerByConn(connID)
	if !found {
		return
	}
	idx := room.playerIndex(player.UserID)
	room.players = append(room.players[:idx], room.players[idx+1:]...)
	s.hub.LeaveRoom(room.EventID, connID)

	s.log.Info("player left competition",
		zap.String("eventId", room.EventID),
		zap.Uint64("userId", player.UserID),
		zap.Int("remaining", len(room.players)))

	if len(room.players) == 0 {
		room.lobbyTimer.Cancel()
		room.Finished = true
		s.removeRoom(room.EventID)
		return
	}

	if player.UserID == room.HostID {
		room.HostID = room.players[0].UserID
		s.hub.ToRoom(room.EventID, constants.MsgCompetitionHostInfo, hostInfoPayload{HostID: room.HostID})
	}

	if !room.Started {
		s.broadcastLobbyLocked(room)
		return
	}

	subs := room.levelSubs(room.CurrentLevel)
	if _, submitted := subs[player.UserID]; !submitted {
		elapsed := s.now().Sub(room.LevelStartedAt).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		subs[player.UserID] = ForfeitSubmission(player, elapsed)
		s.hub.ToRoom(room.EventID, constants.MsgCompetitionForceDone, forceCompletePayload{
			Level:   room.CurrentLevel,
			Message: player.Username + " disconnected and forfeited the level",
		})
	}

	if s.levelCompleteLocked(room) {
		s.completeLevelLocked(room)
	}
}

// RoomCount 当前在内存中的赛事房间数
func (s *CompetitionService) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// persistLocked 赛事结束落库, 失败只记日志, 榜单已经广播不回滚
func (s *CompetitionService) persistLocked(room *CompetitionRoom, board []model.LeaderboardEntry) {
	if room.persisted {
		return
	}
	room.persisted = true

	results := make([]model.CompetitionResult, 0, len(board))
	for rank, entry := range board {
		levels := make(map[int]int, room.TotalLevels)
		for lvl, subs := range room.submissions {
			if sub, ok := subs[entry.UserID]; ok {
				levels[lvl] = sub.Score
			}
		}
		results = append(results, model.CompetitionResult{
			EventID:    room.EventID,
			UserID:     entry.UserID,
			Username:   entry.Username,
			TotalScore: entry.TotalScore,
			FinalRank:  rank + 1,
			Levels:     marshalLevels(levels),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.stats.RecordCompetition(ctx, room.EventID, results); err != nil {
		s.log.Error("failed to persist competition results",
			zap.String("eventId", room.EventID),
			zap.Error(err))
	}
}

func marshalLevels(levels map[int]int) string {
	data, err := json.Marshal(levels)
	if err != nil {
		return "{}"
	}
	return string(data)
}

type competitionPlayer struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`
}

type updatePlayersPayload struct {
	Players []competitionPlayer `json:"players"`
}

type hostInfoPayload struct {
	HostID uint64 `json:"hostId"`
}

type competitionTimerPayload struct {
	Seconds int `json:"seconds"`
}

type roundStartedPayload struct {
	BattleStartsAt   int64  `json:"battleStartsAt"`
	ServerTime       int64  `json:"serverTime"`
	CountdownSeconds int    `json:"countdownSeconds"`
	ProblemID        string `json:"problemId"`
	Level            int    `json:"level"`
	TotalLevels      int    `json:"totalLevels"`
}

type playerSubmittedPayload struct {
	UserID         uint64 `json:"userId"`
	Username       string `json:"username"`
	TotalSubmitted int    `json:"totalSubmitted"`
	TotalPlayers   int    `json:"totalPlayers"`
	Level          int    `json:"level"`
}

type levelCompletePayload struct {
	EventID               string                   `json:"eventId"`
	Level                 int                      `json:"level"`
	LevelLeaderboard      []model.LeaderboardEntry `json:"levelLeaderboard"`
	CumulativeLeaderboard []model.LeaderboardEntry `json:"cumulativeLeaderboard"`
	NextLevel             int                      `json:"nextLevel"`
	TotalLevels           int                      `json:"totalLevels"`
}

type competitionEndPayload struct {
	EventID               string                   `json:"eventId"`
	Level                 int                      `json:"level"`
	LevelLeaderboard      []model.LeaderboardEntry `json:"levelLeaderboard"`
	CumulativeLeaderboard []model.LeaderboardEntry `json:"cumulativeLeaderboard"`
	Winner                *model.LeaderboardEntry  `json:"winner"`
}

type forceCompletePayload struct {
	Level   int    `json:"level"`
	Message string `json:"message"`
}
