// internal/service/maintenance.go

package service

import (
	"hotelac/internal/db"
	"hotelac/internal/logger"
	"hotelac/internal/types"
)

// TakeRoomOffline 把房间标记为维修. 入住中的房间不可下线;
// 空调开着的先按关机流程结算.
func (s *ACService) TakeRoomOffline(roomID int) (*db.RoomInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == types.RoomOccupied {
		return nil, errPrecondition("房间 %d 正在入住, 不能下线维修", roomID)
	}

	if room.ACOn {
		isServing := s.queues.isServing(roomID)
		if _, err := s.stepRoomLocked(room, isServing, true, t); err != nil {
			return nil, err
		}
		if err := s.settleSegmentLocked(room, t, reasonPowerOff); err != nil {
			return nil, err
		}
		s.queues.remove(roomID)
		if err := s.rooms.PowerOff(roomID, s.cfg.DefaultTarget(room.ACMode), room.DefaultTemp); err != nil {
			return nil, errInternal(err, "房间 %d 关机写入失败", roomID)
		}
		if err := s.schedulePassLocked(t); err != nil {
			return nil, err
		}
	}

	if err := s.rooms.UpdateStatus(roomID, types.RoomMaintenance); err != nil {
		return nil, errInternal(err, "房间 %d 状态更新失败", roomID)
	}
	logger.Info("房间 %d 已下线维修", roomID)
	return s.getRoomLocked(roomID)
}

// BringRoomOnline 维修完成, 房间重新可用
func (s *ACService) BringRoomOnline(roomID int) (*db.RoomInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != types.RoomMaintenance {
		return nil, errPrecondition("房间 %d 不在维修状态", roomID)
	}
	if err := s.rooms.UpdateStatus(roomID, types.RoomAvailable); err != nil {
		return nil, errInternal(err, "房间 %d 状态更新失败", roomID)
	}
	logger.Info("房间 %d 维修完成, 重新可用", roomID)
	return s.getRoomLocked(roomID)
}

// ForcePass 立即跑一轮调度, 管理端排障用
func (s *ACService) ForcePass() (*ScheduleStatus, error) {
	s.mu.Lock()
	err := s.schedulePassLocked(s.clk.Now())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.GetScheduleStatus()
}
