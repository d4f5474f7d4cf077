// internal/app/app.go

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/api"
	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/handlers"
	"hotelac/internal/logger"
	"hotelac/internal/service"
	"hotelac/internal/types"
	"hotelac/server"
)

// App 应用装配根: 配置 -> 数据库 -> 时钟 -> 服务 -> HTTP
type App struct {
	cfg      *config.Config
	clk      *clock.Clock
	services *service.Services
	srv      *server.Server
}

func NewApp() *App {
	return &App{}
}

func (a *App) Initialize() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	a.cfg = cfg

	if err := db.Init(cfg.DBPath); err != nil {
		return err
	}
	db.SeedBaseData()
	if err := applyModeConfigs(&cfg.Engine); err != nil {
		return err
	}
	if err := db.EnsureRooms(cfg.Engine.RoomCount, cfg.Engine.DefaultTemp, cfg.Engine.CoolingDefaultTarget); err != nil {
		return err
	}

	a.clk = clock.New(cfg.Engine.TimeAccelerationFactor)
	a.services = service.NewServices(&cfg.Engine, a.clk)

	logger.Info("初始化完成: %d 间房, 服务上限 %d, 时间片 %.0f 秒, 时间倍率 %.1f",
		cfg.Engine.RoomCount, cfg.Engine.ACTotalCount,
		cfg.Engine.TimeSliceSeconds, cfg.Engine.TimeAccelerationFactor)
	return nil
}

// applyModeConfigs 首次启动按配置播种模式表, 之后表中数据覆盖配置值
func applyModeConfigs(engine *config.EngineConfig) error {
	repo := db.NewACConfigRepository()
	if err := repo.Seed([]db.ACModeConfig{
		{Mode: string(types.ModeCooling), MinTemp: engine.CoolingMinTemp, MaxTemp: engine.CoolingMaxTemp, DefaultTarget: engine.CoolingDefaultTarget},
		{Mode: string(types.ModeHeating), MinTemp: engine.HeatingMinTemp, MaxTemp: engine.HeatingMaxTemp, DefaultTarget: engine.HeatingDefaultTarget},
	}); err != nil {
		return err
	}

	rows, err := repo.GetAll()
	if err != nil {
		return err
	}
	for _, row := range rows {
		switch row.Mode {
		case string(types.ModeCooling):
			engine.CoolingMinTemp = row.MinTemp
			engine.CoolingMaxTemp = row.MaxTemp
			engine.CoolingDefaultTarget = row.DefaultTarget
		case string(types.ModeHeating):
			engine.HeatingMinTemp = row.MinTemp
			engine.HeatingMaxTemp = row.MaxTemp
			engine.HeatingDefaultTarget = row.DefaultTarget
		}
	}
	return nil
}

func (a *App) Start() error {
	if err := a.services.Start(time.Second, true); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := a.services.Engine
	router := api.SetupRouter(
		handlers.NewAuthHandler(),
		handlers.NewACHandler(engine),
		handlers.NewHotelHandler(a.services.Hotel),
		handlers.NewBillingHandler(engine, a.services.Hotel),
		handlers.NewReportHandler(a.services.Stats, a.clk),
		handlers.NewMonitorHandler(engine),
		handlers.NewAdminHandler(engine),
		handlers.NewTestHandler(engine, a.clk),
	)

	a.srv = server.NewServer(router, a.cfg.Server.Host, a.cfg.Server.Port)
	a.srv.Start()
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	var firstErr error
	if a.srv != nil {
		if err := a.srv.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	a.services.Stop()
	if err := db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	logger.Info("应用已停止")
	return firstErr
}
