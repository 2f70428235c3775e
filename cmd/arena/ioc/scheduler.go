package ioc

import (
	"log"
	"time"

	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/job"
	"github.com/samarth494/Capstone-sub000/job/arena"
	"github.com/samarth494/Capstone-sub000/service"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func InitScheduler(l *zap.Logger, matchmaker *service.Matchmaker, battles *service.BattleService, stats service.StatsService) *job.CronScheduler {
	var cfg config.MatchmakerConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal matchmaker config failed: %v", err)
	}
	var cleanerCfg config.ArchiveCleanerConfig
	if err := viper.UnmarshalKey(cleanerCfg.Key(), &cleanerCfg); err != nil {
		log.Panicf("unmarshal archive cleaner config failed: %v", err)
	}

	scheduler := job.NewCronScheduler(l)

	sweeper := arena.NewMatchmakerSweeper(matchmaker, l)
	if err := scheduler.AddJob(&job.JobConfig{
		Name:        "匹配队列扫描",
		CronExpr:    cfg.SweepCron,
		JobFunc:     sweeper.RunSweep,
		Description: "按等待时长放宽段位差并撮合排队玩家",
		Enabled:     true,
		Timeout:     30 * time.Second,
	}); err != nil {
		log.Panicf("add matchmaker sweep job failed: %v", err)
	}

	reaper := arena.NewRoomReaper(battles, l)
	if err := scheduler.AddJob(&job.JobConfig{
		Name:        "僵尸对战房间清理",
		CronExpr:    cfg.ReaperCron,
		JobFunc:     reaper.RunCleanup,
		Description: "清理超过加入宽限期仍未开赛的对战房间",
		Enabled:     true,
		Timeout:     30 * time.Second,
	}); err != nil {
		log.Panicf("add room reaper job failed: %v", err)
	}

	cleaner := arena.NewArchiveCleaner(stats, l, time.Duration(cleanerCfg.RetentionDays)*24*time.Hour)
	if err := scheduler.AddJob(&job.JobConfig{
		Name:        "过期存档清理",
		CronExpr:    cleanerCfg.CronExpr,
		JobFunc:     cleaner.RunCleanup,
		Description: "清理超过保留期的对战存档及回放对象",
		Enabled:     cleanerCfg.Enabled,
		Timeout:     5 * time.Minute,
	}); err != nil {
		log.Panicf("add archive cleaner job failed: %v", err)
	}

	return scheduler
}
