// internal/service/monitor.go

package service

import (
	"time"

	"hotelac/internal/logger"
	"hotelac/internal/types"
)

// MonitorService 周期性把房间与队列状态写进日志, 演示时用来观察调度过程
type MonitorService struct {
	engine       *ACService
	stopChan     chan struct{}
	tempTicker   *time.Ticker
	queuesTicker *time.Ticker
}

func NewMonitorService(engine *ACService) *MonitorService {
	return &MonitorService{
		engine:   engine,
		stopChan: make(chan struct{}),
	}
}

// StartRoomTempMonitor 开始监控房间温度与费用
func (m *MonitorService) StartRoomTempMonitor(interval time.Duration) {
	m.tempTicker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-m.tempTicker.C:
				m.logAllRoomStatus()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// StartQueuesMonitor 开始监控调度队列
func (m *MonitorService) StartQueuesMonitor(interval time.Duration) {
	m.queuesTicker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-m.queuesTicker.C:
				m.logSchedulerQueues()
			case <-m.stopChan:
				return
			}
		}
	}()
}

func (m *MonitorService) logAllRoomStatus() {
	states, err := m.engine.ListRoomStatus()
	if err != nil {
		logger.Error("获取房间状态失败: %v", err)
		return
	}
	now := m.engine.Clock().Now()
	logger.Info("=== 所有房间状态 (逻辑时间: %s) ===", now.Format("15:04:05"))
	for _, st := range states {
		logger.Info("房间 %d [%s]:", st.RoomID, roomStatusLabel(st))
		logger.Info("  - 温度: 当前 %.2f°C / 目标 %.2f°C / 缺省 %.2f°C",
			st.CurrentTemp, st.TargetTemp, st.DefaultTemp)
		if st.ACOn {
			logger.Info("  - 空调: 模式 %s / 风速 %s", st.Mode, st.FanSpeed)
			logger.Info("  - 费用: 当前 %.2f元 / 累计 %.2f元", st.CurrentCost, st.TotalCost)
		}
	}
	logger.Info("=============================")
}

func roomStatusLabel(st *RoomState) string {
	switch {
	case st.ACOn && st.QueueState == types.QueueServing:
		return "服务中"
	case st.ACOn && st.QueueState == types.QueueWaiting:
		return "等待中"
	case st.ACOn && st.QueueState == types.QueuePaused:
		return "到温挂起"
	case st.Occupied:
		return "已入住(空调关闭)"
	default:
		return "空闲"
	}
}

// 记录调度队列信息
func (m *MonitorService) logSchedulerQueues() {
	status, err := m.engine.GetScheduleStatus()
	if err != nil {
		logger.Error("获取调度状态失败: %v", err)
		return
	}
	now := m.engine.Clock().Now()
	logger.Info("=== 调度队列状态 (逻辑时间: %s) ===", now.Format("15:04:05"))

	logger.Info("--- 服务队列 (共 %d 个房间) ---", len(status.Serving))
	if len(status.Serving) == 0 {
		logger.Info("服务队列为空")
	} else {
		for _, item := range status.Serving {
			logger.Info("房间 %d: 目标 %.1f°C, 风速 %s, 已服务时长 %.1f 秒",
				item.RoomID, item.TargetTemp, item.FanSpeed, item.ServingSec)
		}
	}

	logger.Info("--- 等待队列 (共 %d 个房间) ---", len(status.Waiting))
	if len(status.Waiting) == 0 {
		logger.Info("等待队列为空")
	} else {
		for _, item := range status.Waiting {
			logger.Info("房间 %d: 目标 %.1f°C, 风速 %s, 已等待时长 %.1f 秒",
				item.RoomID, item.TargetTemp, item.FanSpeed, item.WaitingSec)
		}
	}
	logger.Info("=============================")
}

// Stop 停止监控
func (m *MonitorService) Stop() {
	if m.tempTicker != nil {
		m.tempTicker.Stop()
	}
	if m.queuesTicker != nil {
		m.queuesTicker.Stop()
	}
	close(m.stopChan)
}
