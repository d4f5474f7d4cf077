// internal/service/scheduler.go

package service

import (
	"time"

	"hotelac/internal/db"
	"hotelac/internal/logger"
)

// placeRoomLocked 把房间按当前容量放入合适的队列:
// 有空槽直接服务并锚定计费, 否则排入等待队列.
func (s *ACService) placeRoomLocked(room *db.RoomInfo, t time.Time) error {
	s.queues.remove(room.RoomID)
	entry := &queueEntry{
		roomID:     room.RoomID,
		fanSpeed:   room.FanSpeed,
		mode:       room.ACMode,
		targetTemp: room.TargetTemp,
	}
	ts := t
	if len(s.queues.serving) < s.queues.capacity {
		entry.servingSince = t
		s.queues.serving = append(s.queues.serving, entry)
		if err := s.rooms.MarkServing(room.RoomID, t, room.CurrentTemp); err != nil {
			return errInternal(err, "房间 %d 标记服务状态失败", room.RoomID)
		}
		anchor := room.CurrentTemp
		room.ServingStart = &ts
		room.WaitingStart = nil
		room.BillingStartTemp = &anchor
		logger.Info("房间 %d 进入服务队列, 计费锚点 %.2f°C", room.RoomID, anchor)
	} else {
		entry.waitingSince = t
		s.queues.waiting = append(s.queues.waiting, entry)
		if err := s.rooms.MarkWaiting(room.RoomID, t); err != nil {
			return errInternal(err, "房间 %d 标记等待状态失败", room.RoomID)
		}
		room.WaitingStart = &ts
		room.ServingStart = nil
		room.BillingStartTemp = nil
		logger.Info("房间 %d 服务槽位已满, 进入等待队列", room.RoomID)
	}
	return nil
}

// reconcileMembershipLocked 在风速/模式变化后重建队列成员:
// 保留房间原有的服务/等待归属与起始时刻, 只刷新条目上的参数.
// 挂起的房间不入队; 两个起始时刻都为空时按新房间放置.
func (s *ACService) reconcileMembershipLocked(room *db.RoomInfo, t time.Time) error {
	s.queues.remove(room.RoomID)
	if room.CoolingPaused {
		return nil
	}
	entry := &queueEntry{
		roomID:     room.RoomID,
		fanSpeed:   room.FanSpeed,
		mode:       room.ACMode,
		targetTemp: room.TargetTemp,
	}
	switch {
	case room.ServingStart != nil:
		entry.servingSince = *room.ServingStart
		s.queues.serving = append(s.queues.serving, entry)
	case room.WaitingStart != nil:
		entry.waitingSince = *room.WaitingStart
		s.queues.waiting = append(s.queues.waiting, entry)
	default:
		return s.placeRoomLocked(room, t)
	}
	return nil
}

// demoteLocked 把服务中的房间降级为等待: 按当前服务参数推进温度,
// 结算本计费段, 然后移入等待队列重新计时.
func (s *ACService) demoteLocked(entry *queueEntry, t time.Time, reason settleReason) error {
	room, err := s.getRoomLocked(entry.roomID)
	if err != nil {
		return err
	}
	if _, err := s.stepRoomLocked(room, true, true, t); err != nil {
		return err
	}
	if err := s.settleSegmentLocked(room, t, reason); err != nil {
		return err
	}

	s.queues.remove(entry.roomID)
	entry.servingSince = time.Time{}
	entry.waitingSince = t
	s.queues.waiting = append(s.queues.waiting, entry)
	if err := s.rooms.MarkWaiting(entry.roomID, t); err != nil {
		return errInternal(err, "房间 %d 标记等待状态失败", entry.roomID)
	}
	logger.Info("房间 %d 让出服务槽位 (%s), 转入等待队列", entry.roomID, reason)
	return nil
}

// promoteLocked 把等待中的房间提升为服务: 先把回温漂移推进到当前时刻,
// 再以漂移后的温度作为新计费段的锚点.
func (s *ACService) promoteLocked(entry *queueEntry, t time.Time) error {
	room, err := s.getRoomLocked(entry.roomID)
	if err != nil {
		return err
	}
	if _, err := s.stepRoomLocked(room, false, true, t); err != nil {
		return err
	}

	s.queues.remove(entry.roomID)
	entry.waitingSince = time.Time{}
	entry.servingSince = t
	s.queues.serving = append(s.queues.serving, entry)
	if err := s.rooms.MarkServing(entry.roomID, t, room.CurrentTemp); err != nil {
		return errInternal(err, "房间 %d 标记服务状态失败", entry.roomID)
	}
	logger.Info("房间 %d 获得服务槽位, 计费锚点 %.2f°C", entry.roomID, room.CurrentTemp)
	return nil
}

// schedulePassLocked 调度一轮, 任何命令或 tick 改变世界后都要调用.
// 顺序固定: 容量收敛 -> 优先级抢占 -> 时间片轮转 -> 空槽回填.
func (s *ACService) schedulePassLocked(t time.Time) error {
	// 1. 容量收敛: 超编时按最低优先级/最久服务逐个降级
	for len(s.queues.serving) > s.queues.capacity {
		victim := s.queues.victimServing()
		if victim == nil {
			break
		}
		if err := s.demoteLocked(victim, t, reasonCapacity); err != nil {
			return err
		}
	}

	// 2. 优先级抢占: 等待者风速严格更高时换下最弱的服务者
	for len(s.queues.serving) >= s.queues.capacity {
		w := s.queues.bestWaiting()
		if w == nil {
			break
		}
		v := s.queues.victimServing()
		if v == nil || w.priority() <= v.priority() {
			break
		}
		if err := s.demoteLocked(v, t, reasonPreempted); err != nil {
			return err
		}
		if err := s.promoteLocked(w, t); err != nil {
			return err
		}
	}

	// 3. 时间片轮转: 服务满片且等待者不弱于它的, 让位一次.
	// 轮换次数以本轮开始时的等待人数为上限, 防止同一轮里反复换座.
	swaps := len(s.queues.waiting)
	for swaps > 0 {
		w := s.queues.bestWaiting()
		if w == nil {
			break
		}
		victim := s.queues.rotationVictim(t, s.cfg.TimeSliceSeconds, w.priority())
		if victim == nil {
			break
		}
		if err := s.demoteLocked(victim, t, reasonTimeSlice); err != nil {
			return err
		}
		swaps--
	}

	// 4. 空槽回填: 按等待队列顺序提升直到满员或队列为空
	for len(s.queues.serving) < s.queues.capacity {
		w := s.queues.bestWaiting()
		if w == nil {
			break
		}
		if err := s.promoteLocked(w, t); err != nil {
			return err
		}
	}
	return nil
}

// RestoreQueues 进程重启后从房间表重建内存队列.
// 开机且未挂起的房间按落库的服务/等待起始时刻恢复原位,
// 两者都缺失的按新请求重新放置, 最后跑一轮调度收敛.
func (s *ACService) RestoreQueues() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	rooms, err := s.rooms.GetAllRooms()
	if err != nil {
		return errInternal(err, "恢复队列时获取房间列表失败")
	}
	restored := 0
	for i := range rooms {
		room := &rooms[i]
		if !room.ACOn || room.CoolingPaused {
			continue
		}
		entry := &queueEntry{
			roomID:     room.RoomID,
			fanSpeed:   room.FanSpeed,
			mode:       room.ACMode,
			targetTemp: room.TargetTemp,
		}
		switch {
		case room.ServingStart != nil:
			if room.BillingStartTemp == nil {
				// 锚点丢失时以当前温度重开计费段
				if err := s.rooms.MarkServing(room.RoomID, *room.ServingStart, room.CurrentTemp); err != nil {
					return errInternal(err, "房间 %d 恢复计费锚点失败", room.RoomID)
				}
			}
			entry.servingSince = *room.ServingStart
			s.queues.serving = append(s.queues.serving, entry)
		case room.WaitingStart != nil:
			entry.waitingSince = *room.WaitingStart
			s.queues.waiting = append(s.queues.waiting, entry)
		default:
			if err := s.placeRoomLocked(room, t); err != nil {
				return err
			}
		}
		restored++
	}
	if restored > 0 {
		logger.Info("从数据库恢复 %d 个在队房间", restored)
	}
	return s.schedulePassLocked(t)
}
