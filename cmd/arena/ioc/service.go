package ioc

import (
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/event"
	"github.com/samarth494/Capstone-sub000/pkg/execpool"
	miniox "github.com/samarth494/Capstone-sub000/pkg/minio"
	"github.com/samarth494/Capstone-sub000/pkg/sandbox"
	"github.com/samarth494/Capstone-sub000/service"
	"github.com/samarth494/Capstone-sub000/ws"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func InitStatsService(db *gorm.DB, cmd redis.Cmdable, replays *miniox.ReplayStore, producer event.Producer, l *zap.Logger) service.StatsService {
	var cfg config.MinIOConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal minio config failed: %v", err)
	}
	return service.NewGormStatsService(db, cmd, replays, producer, l, cfg.DownloadDurationSeconds)
}

func InitBattleService(hub *ws.Hub, pool *execpool.Pool, runner sandbox.Runner, stats service.StatsService, l *zap.Logger) *service.BattleService {
	var cfg config.BattleConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal battle config failed: %v", err)
	}
	return service.NewBattleService(hub, pool, runner, stats, cfg, l)
}

func InitCompetitionService(hub *ws.Hub, stats service.StatsService, l *zap.Logger) *service.CompetitionService {
	var cfg config.CompetitionConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal competition config failed: %v", err)
	}
	return service.NewCompetitionService(hub, service.NewScoreValidator(l), stats, cfg, l)
}

func InitMatchmaker(battles *service.BattleService, hub *ws.Hub, l *zap.Logger) *service.Matchmaker {
	var cfg config.MatchmakerConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal matchmaker config failed: %v", err)
	}
	return service.NewMatchmaker(battles, hub, cfg.GapWidenSeconds, l)
}
