//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/samarth494/Capstone-sub000/cmd/arena/ioc"
	commonioc "github.com/samarth494/Capstone-sub000/ioc"
	"github.com/samarth494/Capstone-sub000/service/exporter/factory"
	"github.com/samarth494/Capstone-sub000/web"
	"github.com/samarth494/Capstone-sub000/ws"
)

func BuildDependency() *ioc.App {
	wire.Build(
		commonioc.InitLogger,
		commonioc.InitDB,
		commonioc.InitRedis,
		commonioc.InitProducer,
		commonioc.InitReplayStore,
		commonioc.InitJWTHandler,
		commonioc.InitSandboxRunner,
		commonioc.InitExecPool,

		ws.NewHub,
		ioc.InitStatsService,
		ioc.InitBattleService,
		ioc.InitCompetitionService,
		ioc.InitMatchmaker,
		ws.NewDispatcher,

		factory.NewResultsExporterFactory,
		web.NewHealthHandler,
		web.NewSocketHandler,
		web.NewArenaHandler,

		ioc.InitGinServer,
		ioc.InitScheduler,
		ioc.InitApp,
	)
	return &ioc.App{}
}
