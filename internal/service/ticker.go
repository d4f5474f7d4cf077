// internal/service/ticker.go

package service

import (
	"time"

	"hotelac/internal/db"
	"hotelac/internal/logger"
)

const defaultTickInterval = time.Second

// Tick 推进一次世界: 所有开机房间的温度走到当前逻辑时刻,
// 处理到温挂起与回温唤醒, 最后跑一轮调度.
// 循环协程周期性调用; 测试可以直接调用以配合暂停的时钟.
func (s *ACService) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	rooms, err := s.rooms.GetAllRooms()
	if err != nil {
		logger.Error("tick 获取房间列表失败: %v", err)
		return
	}
	for i := range rooms {
		room := &rooms[i]
		if !room.ACOn {
			continue // 关机房间温度冻结
		}
		if err := s.tickRoomLocked(room, t); err != nil {
			logger.Error("房间 %d 温度推进失败: %v", room.RoomID, err)
		}
	}
	if err := s.schedulePassLocked(t); err != nil {
		logger.Error("调度失败: %v", err)
	}
}

func (s *ACService) tickRoomLocked(room *db.RoomInfo, t time.Time) error {
	isServing := s.queues.isServing(room.RoomID)
	sig, err := s.stepRoomLocked(room, isServing, false, t)
	if err != nil {
		return err
	}
	switch sig {
	case SignalReached:
		if err := s.settleSegmentLocked(room, t, reasonTargetReached); err != nil {
			return err
		}
		s.queues.remove(room.RoomID)
		if err := s.rooms.PauseConditioning(room.RoomID, room.CurrentTemp); err != nil {
			return errInternal(err, "房间 %d 挂起写入失败", room.RoomID)
		}
		pt := room.CurrentTemp
		room.CoolingPaused = true
		room.PauseStartTemp = &pt
		room.ServingStart = nil
		room.WaitingStart = nil
		room.BillingStartTemp = nil
		logger.Info("房间 %d 达到目标温度 %.1f°C, 挂起送风", room.RoomID, room.TargetTemp)
	case SignalWake:
		if err := s.resumeFromPauseLocked(room, t); err != nil {
			return err
		}
		logger.Info("房间 %d 回温超过阈值, 重新请求送风", room.RoomID)
	}
	return nil
}

// Start 启动温度推进循环
func (s *ACService) Start(interval time.Duration) {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.runTicker(interval)
	logger.Info("温控循环启动, 周期 %v", interval)
}

func (s *ACService) runTicker(interval time.Duration) {
	defer close(s.doneCh)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-s.stopCh:
			return
		}
	}
}

// Stop 停止温度推进循环并等待协程退出
func (s *ACService) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
	logger.Info("温控循环已停止")
}
