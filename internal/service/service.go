// internal/service/service.go

package service

import (
	"time"

	"hotelac/internal/clock"
	"hotelac/internal/config"
)

// Services 聚合温控引擎与各业务服务, 进程内只组装一次
type Services struct {
	Engine  *ACService
	Hotel   *HotelService
	Stats   *StatisticsService
	Monitor *MonitorService

	monitorOn bool
}

// NewServices 按依赖顺序组装所有服务
func NewServices(cfg *config.EngineConfig, clk *clock.Clock) *Services {
	engine := NewACService(cfg, clk)
	return &Services{
		Engine:  engine,
		Hotel:   NewHotelService(engine, cfg, clk),
		Stats:   NewStatisticsService(clk),
		Monitor: NewMonitorService(engine),
	}
}

// Start 恢复调度队列并启动温控与监控循环
func (s *Services) Start(tickInterval time.Duration, enableMonitor bool) error {
	if err := s.Engine.RestoreQueues(); err != nil {
		return err
	}
	s.Engine.Start(tickInterval)
	if enableMonitor {
		s.Monitor.StartRoomTempMonitor(10 * time.Second)
		s.Monitor.StartQueuesMonitor(5 * time.Second)
		s.monitorOn = true
	}
	return nil
}

// Stop 停止所有后台循环
func (s *Services) Stop() {
	if s.monitorOn {
		s.Monitor.Stop()
		s.monitorOn = false
	}
	s.Engine.Stop()
}
