package ioc

import (
	"log"

	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/pkg/execpool"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func InitExecPool(l *zap.Logger) *execpool.Pool {
	var cfg config.ExecPoolConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal exec pool config failed: %v", err)
	}
	return execpool.New(cfg.Concurrency, cfg.QueueSize, l)
}
