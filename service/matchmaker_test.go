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

func newMatchmakerFixture(t *testing.T) (*Matchmaker, *fakeHub, *fakeClock) {
	t.Helper()
	hub := newFakeHub()
	clock := newFakeClock()
	pool := execpool.New(5, 100, zap.NewNop())

	battles := NewBattleService(hub, pool, &fakeRunner{}, newFakeStats(), config.BattleConfig{}, zap.NewNop())
	battles.now = clock.Now
	battles.tickInterval = time.Hour

	m := NewMatchmaker(battles, hub, 15, zap.NewNop())
	m.now = clock.Now
	return m, hub, clock
}

func qp(connID string, userID uint64, rank model.RankTier) model.Player {
	return model.Player{ConnID: connID, UserID: userID, Username: connID, Rank: rank}
}

func TestMatchmakerSameTierMatchesImmediately(t *testing.T) {
	m, hub, _ := newMatchmakerFixture(t)

	m.Enqueue(qp("c1", 1, model.RankGold))
	m.Enqueue(qp("c2", 2, model.RankGold))
	require.NoError(t, m.Sweep(context.Background()))

	found := hub.byEvent("match_found")
	require.Len(t, found, 2)
	assert.Zero(t, m.Len())
	// 双方拿到同一个房间号
	p1 := found[0].Payload.(matchFoundPayload)
	p2 := found[1].Payload.(matchFoundPayload)
	assert.Equal(t, p1.RoomID, p2.RoomID)
	assert.Equal(t, "c2", p1.Opponent.Username)
	assert.Equal(t, "c1", p2.Opponent.Username)
}

func TestMatchmakerGapWidensWithWait(t *testing.T) {
	m, hub, clock := newMatchmakerFixture(t)

	m.Enqueue(qp("c1", 1, model.RankBronze))
	m.Enqueue(qp("c2", 2, model.RankGold)) // 差 2 段

	// 未等够 30 秒不许跨 2 段
	require.NoError(t, m.Sweep(context.Background()))
	assert.Zero(t, hub.count("match_found"))
	assert.Equal(t, 2, m.Len())

	clock.Advance(29 * time.Second)
	require.NoError(t, m.Sweep(context.Background()))
	assert.Zero(t, hub.count("match_found"))

	clock.Advance(2 * time.Second)
	require.NoError(t, m.Sweep(context.Background()))
	assert.Equal(t, 2, hub.count("match_found"))
	assert.Zero(t, m.Len())
}

func TestMatchmakerPrefersSmallestGap(t *testing.T) {
	m, hub, _ := newMatchmakerFixture(t)

	m.Enqueue(qp("c1", 1, model.RankGold))
	m.Enqueue(qp("c2", 2, model.RankDiamond))
	m.Enqueue(qp("c3", 3, model.RankGold))
	require.NoError(t, m.Sweep(context.Background()))

	// c1 应配同段的 c3, 而不是先扫描到的 c2
	found := hub.byEvent("match_found")
	require.Len(t, found, 2)
	assert.Equal(t, "c3", found[0].Payload.(matchFoundPayload).Opponent.Username)
	assert.Equal(t, 1, m.Len())
}

func TestMatchmakerMultipleMatchesPerSweep(t *testing.T) {
	m, hub, _ := newMatchmakerFixture(t)

	m.Enqueue(qp("c1", 1, model.RankGold))
	m.Enqueue(qp("c2", 2, model.RankGold))
	m.Enqueue(qp("c3", 3, model.RankSilver))
	m.Enqueue(qp("c4", 4, model.RankSilver))
	require.NoError(t, m.Sweep(context.Background()))

	assert.Equal(t, 4, hub.count("match_found"))
	assert.Zero(t, m.Len())
}

func TestMatchmakerRequeueResetsWait(t *testing.T) {
	m, hub, clock := newMatchmakerFixture(t)

	m.Enqueue(qp("c1", 1, model.RankBronze))
	m.Enqueue(qp("c2", 2, model.RankSilver))
	clock.Advance(14 * time.Second)

	// 重复入队替换旧条目, 等待时间清零
	m.Enqueue(qp("c1", 1, model.RankBronze))
	clock.Advance(2 * time.Second)
	require.NoError(t, m.Sweep(context.Background()))
	assert.Zero(t, hub.count("match_found"))
	assert.Equal(t, 2, m.Len())
}

func TestMatchmakerRemoveByConn(t *testing.T) {
	m, _, _ := newMatchmakerFixture(t)

	m.Enqueue(qp("c1", 1, model.RankGold))
	m.Enqueue(qp("c2", 2, model.RankGold))
	m.RemoveByConn("c1")
	assert.Equal(t, 1, m.Len())

	// 不在队列中的连接号移除是空操作
	m.RemoveByConn("c9")
	assert.Equal(t, 1, m.Len())
}

func TestMatchmakerLonePlayerWaits(t *testing.T) {
	m, hub, clock := newMatchmakerFixture(t)

	m.Enqueue(qp("c1", 1, model.RankGold))
	clock.Advance(time.Hour)
	require.NoError(t, m.Sweep(context.Background()))
	assert.Zero(t, hub.count("match_found"))
	assert.Equal(t, 1, m.Len())
}
