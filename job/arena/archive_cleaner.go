package arena

import (
	"context"
	"time"

	"github.com/samarth494/Capstone-sub000/service"
	"go.uber.org/zap"
)

// ArchiveCleaner 清理过期的对战存档和回放对象
type ArchiveCleaner struct {
	stats     service.StatsService
	log       *zap.Logger
	retention time.Duration
}

func NewArchiveCleaner(stats service.StatsService, log *zap.Logger, retention time.Duration) *ArchiveCleaner {
	return &ArchiveCleaner{
		stats:     stats,
		log:       log,
		retention: retention,
	}
}

func (c *ArchiveCleaner) RunCleanup(ctx context.Context) error {
	return c.stats.CleanExpiredArchives(ctx, time.Now().Add(-c.retention))
}
