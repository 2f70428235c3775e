package service

import (
	"context"
	"testing"
	"time"

	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/model"
	"github.com/samarth494/Capstone-sub000/pkg/execpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBattleFixture(t *testing.T, runner *fakeRunner) (*BattleService, *fakeHub, *fakeStats, *fakeClock) {
	t.Helper()
	hub := newFakeHub()
	stats := newFakeStats()
	clock := newFakeClock()
	pool := execpool.New(5, 100, zap.NewNop())

	svc := NewBattleService(hub, pool, runner, stats, config.BattleConfig{
		DurationSeconds:  60,
		JoinGraceSeconds: 120,
	}, zap.NewNop())
	svc.now = clock.Now
	// 测试里不依赖真实计时, 手动调 tick
	svc.tickInterval = time.Hour
	return svc, hub, stats, clock
}

func battlePlayers() (model.Player, model.Player) {
	p1 := model.Player{ConnID: "conn-1", UserID: 101, Username: "alice", Rank: model.RankGold}
	p2 := model.Player{ConnID: "conn-2", UserID: 102, Username: "bob", Rank: model.RankGold}
	return p1, p2
}

func TestBattleCountdownStartsExactlyOnce(t *testing.T) {
	svc, hub, _, _ := newBattleFixture(t, &fakeRunner{})
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)

	// 单方到场不启动
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	assert.Zero(t, hub.count("battle:startTimer"))

	// 重复宣告幂等
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	assert.Zero(t, hub.count("battle:startTimer"))

	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))
	assert.Equal(t, 1, hub.count("battle:startTimer"))

	// 双方都再次宣告, 计时不重启
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))
	assert.Equal(t, 1, hub.count("battle:startTimer"))
}

func TestBattleJoinUnknownRoom(t *testing.T) {
	svc, hub, _, _ := newBattleFixture(t, &fakeRunner{})
	err := svc.HandleJoin("nope", "conn-1", "alice")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 1, hub.count("battle:error"))
}

func TestBattleSubmitWinsAndPersistsOnce(t *testing.T) {
	runner := &fakeRunner{result: &model.RunResult{Success: true}}
	svc, hub, stats, _ := newBattleFixture(t, runner)
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	svc.HandleSubmit(context.Background(), room.ID, p1.ConnID, model.BattleSubmitParam{
		RoomID: room.ID, Code: "print(1)", Language: "python",
	})

	results := hub.byEvent("battle:result")
	require.Len(t, results, 1)
	payload := results[0].Payload.(battleResultPayload)
	assert.Equal(t, p1.UserID, payload.WinnerID)
	assert.Equal(t, "solved", payload.Reason)

	require.Equal(t, 1, stats.battleCount())
	require.NotNil(t, stats.battles[0].WinnerID)
	assert.Equal(t, p1.UserID, *stats.battles[0].WinnerID)
	assert.Zero(t, svc.RoomCount())

	// 房间已终结, 迟到的提交不得二次判定
	svc.HandleSubmit(context.Background(), room.ID, p2.ConnID, model.BattleSubmitParam{
		RoomID: room.ID, Code: "print(2)", Language: "python",
	})
	assert.Equal(t, 1, hub.count("battle:result"))
	assert.Equal(t, 1, stats.battleCount())
}

func TestBattleDryRunDoesNotDecideWinner(t *testing.T) {
	runner := &fakeRunner{result: &model.RunResult{Success: true, Stdout: "ok"}}
	svc, hub, stats, _ := newBattleFixture(t, runner)
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	svc.HandleSubmit(context.Background(), room.ID, p1.ConnID, model.BattleSubmitParam{
		RoomID: room.ID, Code: "print(1)", Language: "python", DryRun: true,
	})

	results := hub.byEvent("battle:executionResult")
	require.Len(t, results, 1)
	assert.Equal(t, p1.ConnID, results[0].Target)
	assert.Zero(t, hub.count("battle:result"))
	assert.Zero(t, stats.battleCount())
	assert.Equal(t, 1, svc.RoomCount())
}

func TestBattleFailedSubmissionKeepsRoomActive(t *testing.T) {
	runner := &fakeRunner{result: &model.RunResult{Success: false, Stderr: "SyntaxError", ExitCode: 1}}
	svc, hub, stats, _ := newBattleFixture(t, runner)
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	svc.HandleSubmit(context.Background(), room.ID, p1.ConnID, model.BattleSubmitParam{
		RoomID: room.ID, Code: "print(", Language: "python",
	})

	require.Equal(t, 1, hub.count("battle:executionResult"))
	assert.Zero(t, hub.count("battle:result"))
	assert.Zero(t, stats.battleCount())
	assert.Equal(t, 1, svc.RoomCount())
}

func TestBattleTimeoutIsDraw(t *testing.T) {
	svc, hub, stats, _ := newBattleFixture(t, &fakeRunner{})
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	for i := 0; i < 60; i++ {
		svc.tick(room.ID)
	}

	ends := hub.byEvent("battle:end")
	require.Len(t, ends, 1)
	assert.Equal(t, "timeout", ends[0].Payload.(battleEndPayload).Reason)

	require.Equal(t, 1, stats.battleCount())
	assert.Nil(t, stats.battles[0].WinnerID)
	assert.Zero(t, svc.RoomCount())

	// 归零后的残余 tick 不得重复终结
	svc.tick(room.ID)
	assert.Equal(t, 1, hub.count("battle:end"))
	assert.Equal(t, 1, stats.battleCount())
}

func TestBattleTimerUpdatesBroadcast(t *testing.T) {
	svc, hub, _, _ := newBattleFixture(t, &fakeRunner{})
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	svc.tick(room.ID)
	svc.tick(room.ID)

	updates := hub.byEvent("battle:timerUpdate")
	require.Len(t, updates, 2)
	assert.Equal(t, 59, updates[0].Payload.(timerUpdatePayload).TimeLeft)
	assert.Equal(t, 58, updates[1].Payload.(timerUpdatePayload).TimeLeft)
}

func TestBattleDisconnectAwardsOpponent(t *testing.T) {
	svc, hub, stats, _ := newBattleFixture(t, &fakeRunner{})
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	svc.HandleDisconnect(p1.ConnID)

	results := hub.byEvent("battle:result")
	require.Len(t, results, 1)
	payload := results[0].Payload.(battleResultPayload)
	assert.Equal(t, p2.UserID, payload.WinnerID)
	assert.Equal(t, "opponent_left", payload.Reason)

	require.Equal(t, 1, stats.battleCount())
	require.NotNil(t, stats.battles[0].WinnerID)
	assert.Equal(t, p2.UserID, *stats.battles[0].WinnerID)
}

func TestBattleDisconnectBeforeOpponentJoinsIsNoContest(t *testing.T) {
	svc, hub, stats, _ := newBattleFixture(t, &fakeRunner{})
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))

	svc.HandleDisconnect(p1.ConnID)

	// 对局未开始, 不计战绩, 但对手要收到明确的终止信号
	assert.Zero(t, stats.battleCount())
	ends := hub.byEvent("battle:end")
	require.Len(t, ends, 1)
	assert.Equal(t, p2.ConnID, ends[0].Target)
	assert.Zero(t, svc.RoomCount())
}

func TestBattleRelayEventsGoToOpponentOnly(t *testing.T) {
	svc, hub, _, _ := newBattleFixture(t, &fakeRunner{})
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	svc.HandleTyping(room.ID, p1.ConnID)
	svc.HandleRunTests(room.ID, p2.ConnID)
	svc.HandleAttempt(room.ID, p1.ConnID)

	typing := hub.byEvent("battle:opponentTyping")
	require.Len(t, typing, 1)
	assert.Equal(t, p2.ConnID, typing[0].Target)

	running := hub.byEvent("battle:opponentRunningTests")
	require.Len(t, running, 1)
	assert.Equal(t, p1.ConnID, running[0].Target)

	attempts := hub.byEvent("battle:opponentAttempting")
	require.Len(t, attempts, 1)
	assert.Equal(t, p2.ConnID, attempts[0].Target)
}

func TestBattleQueueFullSurfacesCapacityError(t *testing.T) {
	runner := &fakeRunner{blockCh: make(chan struct{})}
	hub := newFakeHub()
	stats := newFakeStats()
	pool := execpool.New(1, 0, zap.NewNop())
	svc := NewBattleService(hub, pool, runner, stats, config.BattleConfig{
		DurationSeconds:  60,
		JoinGraceSeconds: 120,
	}, zap.NewNop())
	svc.tickInterval = time.Hour

	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	go svc.HandleSubmit(context.Background(), room.ID, p1.ConnID, model.BattleSubmitParam{
		RoomID: room.ID, Code: "while True: pass", Language: "python",
	})
	require.Eventually(t, func() bool { return pool.Running() == 1 }, time.Second, 5*time.Millisecond)

	svc.HandleSubmit(context.Background(), room.ID, p2.ConnID, model.BattleSubmitParam{
		RoomID: room.ID, Code: "print(1)", Language: "python",
	})
	require.Equal(t, 1, hub.count("battle:error"))

	close(runner.blockCh)
	require.Eventually(t, func() bool { return stats.battleCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBattleReapStaleRooms(t *testing.T) {
	svc, hub, stats, clock := newBattleFixture(t, &fakeRunner{})
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))

	// 宽限期内不清理
	require.NoError(t, svc.ReapStale(context.Background()))
	assert.Equal(t, 1, svc.RoomCount())

	clock.Advance(121 * time.Second)
	require.NoError(t, svc.ReapStale(context.Background()))
	assert.Zero(t, svc.RoomCount())
	assert.Equal(t, 1, hub.count("battle:end"))
	assert.Zero(t, stats.battleCount())
}

func TestBattleCodeUpdatesFeedReplay(t *testing.T) {
	runner := &fakeRunner{result: &model.RunResult{Success: true}}
	svc, _, stats, clock := newBattleFixture(t, runner)
	p1, p2 := battlePlayers()
	room := svc.CreateRoom(p1, p2)
	require.NoError(t, svc.HandleJoin(room.ID, p1.ConnID, p1.Username))
	require.NoError(t, svc.HandleJoin(room.ID, p2.ConnID, p2.Username))

	svc.HandleCodeUpdate(room.ID, p1.ConnID, "print(")
	clock.Advance(3 * time.Second)
	svc.HandleCodeUpdate(room.ID, p1.ConnID, "print(1)")
	clock.Advance(3 * time.Second)

	svc.HandleSubmit(context.Background(), room.ID, p1.ConnID, model.BattleSubmitParam{
		RoomID: room.ID, Code: "print(1)", Language: "python",
	})

	require.Equal(t, 1, stats.battleCount())
	replay := stats.battles[0].Replay
	require.Len(t, replay, 3)
	assert.Equal(t, model.ReplayEventCodeUpdate, replay[0].Type)
	assert.Equal(t, model.ReplayEventCodeUpdate, replay[1].Type)
	assert.Equal(t, model.ReplayEventSubmission, replay[2].Type)
}
