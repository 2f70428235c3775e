package ioc

import (
	"log"

	"go.uber.org/zap"
)

func InitLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		log.Panicf("init logger failed: %v", err)
	}
	return l
}
