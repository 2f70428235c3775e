package ioc

import (
	"log"
	"time"

	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/pkg/sandbox"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func InitSandboxRunner(l *zap.Logger) sandbox.Runner {
	var cfg config.SandboxConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal sandbox config failed: %v", err)
	}
	return sandbox.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second, l)
}
