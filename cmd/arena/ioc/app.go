package ioc

import (
	"fmt"

	"github.com/samarth494/Capstone-sub000/job"
	"github.com/samarth494/Capstone-sub000/web"
)

// App 同进程承载 HTTP/WebSocket 服务和后台定时任务,
// 定时任务与对战服务共享同一份内存态房间数据
type App struct {
	Server    *web.GinServer
	Scheduler *job.CronScheduler
}

func InitApp(server *web.GinServer, scheduler *job.CronScheduler) *App {
	return &App{
		Server:    server,
		Scheduler: scheduler,
	}
}

func (a *App) Start() error {
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler failed: %w", err)
	}
	return a.Server.Start()
}

func (a *App) Stop() {
	a.Scheduler.Stop()
}
