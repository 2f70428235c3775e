package model

import "time"

// RankTier 段位, 匹配算法唯一的技能信号
type RankTier int8

const (
	RankBronze   RankTier = 0
	RankSilver   RankTier = 1
	RankGold     RankTier = 2
	RankPlatinum RankTier = 3
	RankDiamond  RankTier = 4
)

func (r RankTier) String() string {
	switch r {
	case RankBronze:
		return "Bronze"
	case RankSilver:
		return "Silver"
	case RankGold:
		return "Gold"
	case RankPlatinum:
		return "Platinum"
	case RankDiamond:
		return "Diamond"
	}
	return "Unknown"
}

// RankFromWins 根据累计胜场计算段位, 单调不减的阶梯函数
func RankFromWins(wins int) RankTier {
	switch {
	case wins <= 5:
		return RankBronze
	case wins <= 15:
		return RankSilver
	case wins <= 30:
		return RankGold
	case wins <= 50:
		return RankPlatinum
	default:
		return RankDiamond
	}
}

// Player 连接期间的玩家描述符, 断开或匹配成功后即丢弃
type Player struct {
	ConnID   string   `json:"connId"`
	UserID   uint64   `json:"userId"`
	Username string   `json:"username"`
	Rank     RankTier `json:"rank"`
}

// QueueEntry 匹配队列条目, JoinedAt 驱动段位差放宽
type QueueEntry struct {
	Player   Player
	JoinedAt time.Time
}
