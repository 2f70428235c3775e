package ioc

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/web"
	arenajwt "github.com/samarth494/Capstone-sub000/web/jwt"
	"github.com/samarth494/Capstone-sub000/web/middleware"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func InitGinServer(l *zap.Logger, jwtHandler arenajwt.Handler, healthHandler *web.HealthHandler, socketHandler *web.SocketHandler, arenaHandler *web.ArenaHandler) *web.GinServer {
	var cfg config.GinConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal gin config failed, err: %v", err)
	}

	// 优先使用环境变量中设置的服务端口
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Addr = ":" + port
	}

	corsBuilder := middleware.NewCORSMiddlewareBuilder(
		cfg.AllowOrigins,
		cfg.AllowMethods,
		cfg.AllowHeaders,
		cfg.ExposeHeaders,
		cfg.AllowCredentials,
		time.Duration(cfg.MaxAge)*time.Second)
	jwtBuilder := middleware.NewJWTMiddlewareBuilder(jwtHandler, l, cfg.ProtectedPaths)

	engine := gin.Default()
	engine.Use(
		corsBuilder.Build(),
		jwtBuilder.CheckLogin(),
	)
	pprof.Register(engine)

	healthHandler.Register(engine)
	socketHandler.Register(engine)
	arenaHandler.Register(engine)

	return &web.GinServer{
		Engine: engine,
		Addr:   cfg.Addr,
	}
}
