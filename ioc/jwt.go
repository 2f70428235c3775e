package ioc

import (
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samarth494/Capstone-sub000/config"
	arenajwt "github.com/samarth494/Capstone-sub000/web/jwt"
	"github.com/spf13/viper"
)

func InitJWTHandler(client redis.Cmdable) arenajwt.Handler {
	var cfg config.JWTConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal jwt config failed: %v", err)
	}
	return arenajwt.NewRedisJWTHandler(client, []byte(cfg.Secret), time.Duration(cfg.ExpirationMinutes)*time.Minute)
}
