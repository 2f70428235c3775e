package ioc

import (
	"log"

	"github.com/samarth494/Capstone-sub000/config"
	miniox "github.com/samarth494/Capstone-sub000/pkg/minio"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func InitReplayStore(l *zap.Logger) *miniox.ReplayStore {
	var cfg config.MinIOConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal minio config failed: %v", err)
	}
	return miniox.NewReplayStore(l, cfg.Endpoint, cfg.UseSSL, cfg.ReplayBucket)
}
