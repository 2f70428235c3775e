package arena

import (
	"context"
	"time"

	"github.com/samarth494/Capstone-sub000/service"
	"go.uber.org/zap"
)

// RoomReaper 清理双方始终没有到齐的僵尸对战房间
type RoomReaper struct {
	battles *service.BattleService
	log     *zap.Logger
}

func NewRoomReaper(battles *service.BattleService, log *zap.Logger) *RoomReaper {
	return &RoomReaper{
		battles: battles,
		log:     log,
	}
}

type ReapStats struct {
	RoomsBefore     int           `json:"rooms_before"`
	RoomsAfter      int           `json:"rooms_after"`
	ProcessDuration time.Duration `json:"process_duration"`
}

func (r *RoomReaper) RunCleanup(ctx context.Context) error {
	stats := ReapStats{RoomsBefore: r.battles.RoomCount()}
	start := time.Now()

	err := r.battles.ReapStale(ctx)

	stats.RoomsAfter = r.battles.RoomCount()
	stats.ProcessDuration = time.Since(start)
	if reaped := stats.RoomsBefore - stats.RoomsAfter; reaped > 0 {
		r.log.Info("Room reap completed", zap.Any("stats", stats))
	}
	return err
}
