package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCompetitionFixture(t *testing.T, cfg config.CompetitionConfig) (*CompetitionService, *fakeHub, *fakeStats, *fakeClock) {
	t.Helper()
	hub := newFakeHub()
	stats := newFakeStats()
	clock := newFakeClock()

	svc := NewCompetitionService(hub, NewScoreValidator(zap.NewNop()), stats, cfg, zap.NewNop())
	svc.now = clock.Now
	svc.tickInterval = time.Hour
	return svc, hub, stats, clock
}

func joinParam(userID uint64, name string) model.CompetitionJoinParam {
	return model.CompetitionJoinParam{EventID: "evt-1", UserID: userID, Username: name, Language: "python"}
}

func submitParam(userID uint64, name string, level, testsPassed int) model.CompetitionSubmitParam {
	return model.CompetitionSubmitParam{
		EventID:  "evt-1",
		UserID:   userID,
		Username: name,
		Level:    level,
		Status:   string(model.SubmissionCompleted),
		Breakdown: model.ScoreBreakdown{
			CorrectCode: 500,
			TestsPassed: testsPassed,
			TestsTotal:  10,
		},
		TimeTaken: 400, // 衰减窗口外, 速度分为 0, 便于断言
	}
}

func TestCompetitionJoinCreatesRoomAndHost(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 4, TotalLevels: 2})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))

	assert.Equal(t, 1, svc.RoomCount())
	hosts := hub.byEvent("competition:hostInfo")
	require.NotEmpty(t, hosts)
	assert.Equal(t, uint64(1), hosts[len(hosts)-1].Payload.(hostInfoPayload).HostID)

	players := hub.byEvent("competition:updatePlayers")
	require.NotEmpty(t, players)
	assert.Len(t, players[len(players)-1].Payload.(updatePlayersPayload).Players, 2)
}

func TestCompetitionReconnectKeepsSeat(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 4})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c1b", joinParam(1, "alice")))

	players := hub.byEvent("competition:updatePlayers")
	assert.Len(t, players[len(players)-1].Payload.(updatePlayersPayload).Players, 1)
}

func TestCompetitionJoinAfterStartRejected(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 4})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleStart("c1", model.CompetitionStartParam{EventID: "evt-1"}))

	err := svc.HandleJoin("c2", joinParam(2, "bob"))
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, 1, hub.count("competition:error"))
}

func TestCompetitionStartHostOnly(t *testing.T) {
	svc, hub, _, clock := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 4, CountdownSeconds: 10, TotalLevels: 3})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))

	err := svc.HandleStart("c2", model.CompetitionStartParam{EventID: "evt-1"})
	assert.ErrorIs(t, err, ErrNotHost)
	assert.Zero(t, hub.count("competition:roundStarted"))

	require.NoError(t, svc.HandleStart("c1", model.CompetitionStartParam{EventID: "evt-1"}))
	rounds := hub.byEvent("competition:roundStarted")
	require.Len(t, rounds, 1)
	payload := rounds[0].Payload.(roundStartedPayload)
	assert.Equal(t, 1, payload.Level)
	assert.Equal(t, 3, payload.TotalLevels)
	assert.Equal(t, 10, payload.CountdownSeconds)
	assert.Equal(t, clock.Now().UnixMilli(), payload.ServerTime)
	assert.Equal(t, clock.Now().Add(10*time.Second).UnixMilli(), payload.BattleStartsAt)

	// 已开始后重复开赛被拒
	err = svc.HandleStart("c1", model.CompetitionStartParam{EventID: "evt-1"})
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestCompetitionAutoStartWhenFull(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 2})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	assert.Zero(t, hub.count("competition:roundStarted"))

	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))
	assert.Equal(t, 1, hub.count("competition:roundStarted"))
}

func TestCompetitionLobbyCountdownAutoStarts(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 8, LobbySeconds: 3})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))

	svc.lobbyTick("evt-1")
	svc.lobbyTick("evt-1")
	updates := hub.byEvent("competition:timerUpdate")
	require.Len(t, updates, 2)
	assert.Equal(t, 2, updates[0].Payload.(competitionTimerPayload).Seconds)
	assert.Equal(t, 1, updates[1].Payload.(competitionTimerPayload).Seconds)

	svc.lobbyTick("evt-1")
	assert.Equal(t, 1, hub.count("competition:roundStarted"))
}

func TestCompetitionRoomDeletedWhenEmpty(t *testing.T) {
	svc, _, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 8, LobbySeconds: 1})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	svc.HandleDisconnect("c1")
	assert.Zero(t, svc.RoomCount())
}

func TestCompetitionFullFlowTwoLevels(t *testing.T) {
	svc, hub, stats, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 2, TotalLevels: 2})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))

	// 第一关: alice 10 通过, bob 4 通过
	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 1, 10)))
	assert.Equal(t, 1, hub.count("competition:playerSubmitted"))

	require.NoError(t, svc.HandleSubmit("c2", submitParam(2, "bob", 1, 4)))
	levels := hub.byEvent("competition:levelComplete")
	require.Len(t, levels, 1)
	payload := levels[0].Payload.(levelCompletePayload)
	assert.Equal(t, 1, payload.Level)
	assert.Equal(t, 2, payload.NextLevel)
	require.Len(t, payload.LevelLeaderboard, 2)
	assert.Equal(t, uint64(1), payload.LevelLeaderboard[0].UserID)
	// base = 50 参与 + 500 正确性, 第一名再加 500 相对分
	assert.Equal(t, 1050, payload.LevelLeaderboard[0].Score)
	assert.Equal(t, 550, payload.LevelLeaderboard[1].Score)

	// 第二关收齐后赛事结束
	require.NoError(t, svc.HandleSubmit("c2", submitParam(2, "bob", 2, 10)))
	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 2, 4)))

	ends := hub.byEvent("competition:competitionEnd")
	require.Len(t, ends, 1)
	endPayload := ends[0].Payload.(competitionEndPayload)
	require.NotNil(t, endPayload.Winner)
	// 两关各拿一次第一, 累计同分, 并列按加入顺序取 alice
	assert.Equal(t, uint64(1), endPayload.Winner.UserID)
	require.Len(t, endPayload.CumulativeLeaderboard, 2)
	assert.Equal(t, 1600, endPayload.CumulativeLeaderboard[0].TotalScore)
	assert.Equal(t, 1600, endPayload.CumulativeLeaderboard[1].TotalScore)

	assert.Zero(t, svc.RoomCount())
	results := stats.competitions["evt-1"]
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].FinalRank)
}

func TestCompetitionDuplicateSubmissionDiscarded(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 2, TotalLevels: 1})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))

	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 1, 10)))
	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 1, 3)))
	assert.Equal(t, 1, hub.count("competition:playerSubmitted"))
	assert.Zero(t, hub.count("competition:competitionEnd"))
}

func TestCompetitionWrongLevelSubmissionDiscarded(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 2, TotalLevels: 3})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))

	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 2, 10)))
	assert.Zero(t, hub.count("competition:playerSubmitted"))
}

func TestCompetitionRelativeBonusDistribution(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 5, TotalLevels: 1})

	for i := 1; i <= 5; i++ {
		conn := fmt.Sprintf("c%d", i)
		require.NoError(t, svc.HandleJoin(conn, joinParam(uint64(i), fmt.Sprintf("p%d", i))))
	}
	require.Equal(t, 1, hub.count("competition:roundStarted"))

	// 通过用例数 10,8,6,4,2 唯一确定名次
	for i := 1; i <= 5; i++ {
		conn := fmt.Sprintf("c%d", i)
		require.NoError(t, svc.HandleSubmit(conn, submitParam(uint64(i), fmt.Sprintf("p%d", i), 1, 12-2*i)))
	}

	ends := hub.byEvent("competition:competitionEnd")
	require.Len(t, ends, 1)
	board := ends[0].Payload.(competitionEndPayload).LevelLeaderboard
	require.Len(t, board, 5)

	// base = 550, 相对分依名次为 {500,375,250,125,0}
	wantBonus := []int{500, 375, 250, 125, 0}
	for i, entry := range board {
		assert.Equal(t, uint64(i+1), entry.UserID)
		assert.Equal(t, 550+wantBonus[i], entry.Score)
	}
}

func TestCompetitionLonePlayerGetsNoRelativeBonus(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 8, TotalLevels: 1})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleStart("c1", model.CompetitionStartParam{EventID: "evt-1"}))
	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 1, 10)))

	ends := hub.byEvent("competition:competitionEnd")
	require.Len(t, ends, 1)
	board := ends[0].Payload.(competitionEndPayload).LevelLeaderboard
	require.Len(t, board, 1)
	assert.Equal(t, 550, board[0].Score)
}

func TestCompetitionDisconnectSynthesizesForfeit(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 3, TotalLevels: 1})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))
	require.NoError(t, svc.HandleJoin("c3", joinParam(3, "carol")))

	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 1, 10)))
	require.NoError(t, svc.HandleSubmit("c2", submitParam(2, "bob", 1, 4)))
	assert.Zero(t, hub.count("competition:competitionEnd"))

	// 最后一个未提交者断开, 补弃权并立即结算
	svc.HandleDisconnect("c3")

	assert.Equal(t, 1, hub.count("competition:disconnectForceComplete"))
	ends := hub.byEvent("competition:competitionEnd")
	require.Len(t, ends, 1)
	board := ends[0].Payload.(competitionEndPayload).LevelLeaderboard
	require.Len(t, board, 3)
	// 弃权者垫底, 零分加相对分 0
	assert.Equal(t, uint64(3), board[2].UserID)
	assert.Equal(t, 0, board[2].Score)
}

func TestCompetitionDisconnectAfterSubmitNoForfeit(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 3, TotalLevels: 1})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))
	require.NoError(t, svc.HandleJoin("c3", joinParam(3, "carol")))

	require.NoError(t, svc.HandleSubmit("c1", submitParam(1, "alice", 1, 10)))
	// 已提交者断开不产生弃权, 其余玩家收齐后才结算
	svc.HandleDisconnect("c1")
	assert.Zero(t, hub.count("competition:disconnectForceComplete"))
	assert.Zero(t, hub.count("competition:competitionEnd"))

	require.NoError(t, svc.HandleSubmit("c2", submitParam(2, "bob", 1, 4)))
	require.NoError(t, svc.HandleSubmit("c3", submitParam(3, "carol", 1, 2)))
	assert.Equal(t, 1, hub.count("competition:competitionEnd"))
}

func TestCompetitionHostHandoffOnDisconnect(t *testing.T) {
	svc, hub, _, _ := newCompetitionFixture(t, config.CompetitionConfig{MaxPlayers: 4})

	require.NoError(t, svc.HandleJoin("c1", joinParam(1, "alice")))
	require.NoError(t, svc.HandleJoin("c2", joinParam(2, "bob")))

	svc.HandleDisconnect("c1")

	hosts := hub.byEvent("competition:hostInfo")
	require.NotEmpty(t, hosts)
	assert.Equal(t, uint64(2), hosts[len(hosts)-1].Payload.(hostInfoPayload).HostID)

	// 新房主可以开赛
	require.NoError(t, svc.HandleStart("c2", model.CompetitionStartParam{EventID: "evt-1"}))
}
