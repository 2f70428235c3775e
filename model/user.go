package model

import "time"

// User 玩家聚合战绩, 由 StatsService 维护
type User struct {
	ID        uint64   `gorm:"primaryKey;autoIncrement"`
	Username  string   `gorm:"type:varchar(64);uniqueIndex"`
	Rank      RankTier `gorm:"type:tinyint;default:0"`
	Wins      int      `gorm:"default:0"`
	Losses    int      `gorm:"default:0"`
	Played    int      `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "user"
}

// LeaderboardRow 全局排行榜行
type LeaderboardRow struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Rank     string `json:"rank"`
	Wins     int    `json:"wins"`
	Played   int    `json:"played"`
}

type GetLeaderboardParam struct {
	Page     int `form:"page" binding:"required,min=1"`
	PageSize int `form:"page_size" binding:"required,min=10,max=100"`
}

type GetLeaderboardResponse struct {
	List     []LeaderboardRow `json:"list"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
