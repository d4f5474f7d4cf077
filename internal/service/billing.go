// internal/service/billing.go

package service

import (
	"math"
	"time"

	"hotelac/internal/db"
	"hotelac/internal/logger"
	"hotelac/internal/types"
)

// settleReason 计费段结束的原因, 也会出现在调度日志里
type settleReason string

const (
	reasonTargetReached settleReason = "TARGET_REACHED"
	reasonTimeSlice     settleReason = "TIME_SLICE"
	reasonPreempted     settleReason = "PREEMPTED"
	reasonCapacity      settleReason = "CAPACITY"
	reasonSpeedChange   settleReason = "SPEED_CHANGE"
	reasonModeChange    settleReason = "MODE_CHANGE"
	reasonPowerOff      settleReason = "POWER_OFF"
)

// effectiveDelta 计费温差: 只统计朝目标方向的变化, 反向为零.
// 制冷按降温量计, 制热按升温量计.
func effectiveDelta(mode types.Mode, startTemp, endTemp float64) float64 {
	var delta float64
	if mode == types.ModeCooling {
		delta = startTemp - endTemp
	} else {
		delta = endTemp - startTemp
	}
	if delta < 0 {
		return 0
	}
	return delta
}

// settleSegmentLocked 结算当前计费段并追加详单.
// 费用 = 有效温差 × 温度费率; 时长按逻辑分钟四舍五入, 仅作展示.
// 关机结算固定写一条 POWER_OFF_CYCLE 记录 (允许零费用), 其余原因
// 只在产生了费用时落账.
func (s *ACService) settleSegmentLocked(room *db.RoomInfo, t time.Time, reason settleReason) error {
	start := t
	if room.ACSessionStart != nil {
		start = *room.ACSessionStart
	}
	if room.ServingStart != nil {
		start = *room.ServingStart
	}

	var delta, cost float64
	if room.ServingStart != nil && room.BillingStartTemp != nil {
		delta = effectiveDelta(room.ACMode, *room.BillingStartTemp, room.CurrentTemp)
		cost = delta * s.cfg.TempFeeRate
	}

	kind := types.DetailAC
	if reason == reasonPowerOff {
		kind = types.DetailPowerOffCycle
	} else if cost <= 0 {
		logger.Debug("房间 %d 计费段无有效温差 (%s), 不落账", room.RoomID, reason)
		return nil
	}

	detail := &db.BillDetail{
		RoomID:     room.RoomID,
		Kind:       kind,
		ACMode:     room.ACMode,
		FanSpeed:   room.FanSpeed,
		StartTime:  start,
		EndTime:    t,
		ServeTime:  math.Round(t.Sub(start).Minutes()),
		Rate:       s.cfg.TempFeeRate,
		TempChange: delta,
		Cost:       cost,
	}
	if room.Status == types.RoomOccupied {
		if c, err := s.customers.GetCurrentByRoom(room.RoomID); err == nil && c != nil {
			id := c.ID
			detail.CustomerID = &id
		}
	}
	if err := s.details.CreateDetail(detail); err != nil {
		return errInternal(err, "房间 %d 详单写入失败", room.RoomID)
	}
	logger.Info("房间 %d 结算 (%s): 温差 %.2f°C, 费用 %.2f 元, 时长 %.0f 分钟",
		room.RoomID, reason, delta, cost, detail.ServeTime)
	return nil
}

// pendingFeeLocked 在途计费段的未落账费用, 只读不推进
func (s *ACService) pendingFeeLocked(room *db.RoomInfo) float64 {
	if !room.ACOn || room.ServingStart == nil || room.BillingStartTemp == nil {
		return 0
	}
	return effectiveDelta(room.ACMode, *room.BillingStartTemp, room.CurrentTemp) * s.cfg.TempFeeRate
}

// appendRoomFeeLocked 开机时落一条周期房费记录 (按日计费开关开启时)
func (s *ACService) appendRoomFeeLocked(room *db.RoomInfo, t time.Time) error {
	detail := &db.BillDetail{
		RoomID:    room.RoomID,
		Kind:      types.DetailRoomFee,
		ACMode:    room.ACMode,
		FanSpeed:  room.FanSpeed,
		StartTime: t,
		EndTime:   t,
		Rate:      room.DailyRate,
		Cost:      room.DailyRate,
	}
	if room.Status == types.RoomOccupied {
		if c, err := s.customers.GetCurrentByRoom(room.RoomID); err == nil && c != nil {
			id := c.ID
			detail.CustomerID = &id
		}
	}
	if err := s.details.CreateDetail(detail); err != nil {
		return errInternal(err, "房间 %d 周期房费写入失败", room.RoomID)
	}
	logger.Info("房间 %d 记周期房费 %.2f 元", room.RoomID, room.DailyRate)
	return nil
}

// FeeDetail 前台/客户端查询的当前费用视图
type FeeDetail struct {
	RoomID  int             `json:"roomId"`
	RoomFee float64         `json:"roomFee"`
	ACFee   float64         `json:"acFee"`
	Total   float64         `json:"totalFee"`
	Details []db.BillDetail `json:"details"`
}

// GetCurrentFeeDetail 汇总房间当前费用: 房费按计费周期数计,
// 空调费 = 已结算详单 + 在途计费段.
func (s *ACService) GetCurrentFeeDetail(roomID int) (*FeeDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return nil, err
	}
	return s.feeDetailLocked(room)
}

// feeDetailLocked 费用汇总的锁内实现, RequestState 的总费用也走这里,
// 保证状态查询与费用查询永远给出同一个数.
func (s *ACService) feeDetailLocked(room *db.RoomInfo) (*FeeDetail, error) {
	details, err := s.details.GetDetailsByRoom(room.RoomID)
	if err != nil {
		return nil, errInternal(err, "查询房间 %d 详单失败", room.RoomID)
	}

	var acFee float64
	cycles := 0
	for _, d := range details {
		switch d.Kind {
		case types.DetailAC:
			acFee += d.Cost
		case types.DetailPowerOffCycle:
			acFee += d.Cost
			cycles++
		}
	}
	acFee += s.pendingFeeLocked(room)

	dailyRate := room.DailyRate
	if dailyRate <= 0 {
		dailyRate = s.cfg.RoomRate
	}
	chargeCycles := 1
	if s.cfg.EnableACCycleDailyFee {
		chargeCycles = cycles
		if room.ACOn {
			chargeCycles++
		}
		if chargeCycles < 1 {
			chargeCycles = 1
		}
	}
	roomFee := float64(chargeCycles) * dailyRate

	return &FeeDetail{
		RoomID:  room.RoomID,
		RoomFee: roomFee,
		ACFee:   acFee,
		Total:   roomFee + acFee,
		Details: details,
	}, nil
}

// ListDetails 查询房间详单, 可选时间范围过滤
func (s *ACService) ListDetails(roomID int, start, end *time.Time) ([]db.BillDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getRoomLocked(roomID); err != nil {
		return nil, err
	}
	if start != nil && end != nil {
		details, err := s.details.GetDetailsByRoomAndTimeRange(roomID, *start, *end)
		if err != nil {
			return nil, errInternal(err, "查询房间 %d 详单失败", roomID)
		}
		return details, nil
	}
	details, err := s.details.GetDetailsByRoom(roomID)
	if err != nil {
		return nil, errInternal(err, "查询房间 %d 详单失败", roomID)
	}
	return details, nil
}
