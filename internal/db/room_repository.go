// internal/db/room_repository.go

package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotelac/internal/types"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{db: DB}
}

// GetRoomByID 通过房间号获取房间信息.
// 房间不存在时返回值包装 gorm.ErrRecordNotFound, 供上层识别.
func (r *RoomRepository) GetRoomByID(roomID int) (*RoomInfo, error) {
	var room RoomInfo
	err := r.db.Where("room_id = ?", roomID).First(&room).Error
	if err != nil {
		return nil, fmt.Errorf("查询房间 %d 失败: %w", roomID, err)
	}
	return &room, nil
}

// GetAllRooms 获取所有房间, 按房间号排序
func (r *RoomRepository) GetAllRooms() ([]RoomInfo, error) {
	var rooms []RoomInfo
	err := r.db.Order("room_id ASC").Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("获取所有房间失败: %w", err)
	}
	return rooms, nil
}

// GetOccupiedRooms 获取所有已入住房间
func (r *RoomRepository) GetOccupiedRooms() ([]RoomInfo, error) {
	var rooms []RoomInfo
	err := r.db.Where("status = ?", types.RoomOccupied).Order("room_id ASC").Find(&rooms).Error
	return rooms, err
}

// GetAvailableRooms 获取所有可入住房间
func (r *RoomRepository) GetAvailableRooms() ([]RoomInfo, error) {
	var rooms []RoomInfo
	err := r.db.Where("status = ?", types.RoomAvailable).Order("room_id ASC").Find(&rooms).Error
	return rooms, err
}

// update 按列更新, 避免整行回写覆盖并发修改
func (r *RoomRepository) update(roomID int, fields map[string]interface{}) error {
	result := r.db.Model(&RoomInfo{}).Where("room_id = ?", roomID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("更新房间 %d 失败: %w", roomID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("更新房间 %d 失败: %w", roomID, gorm.ErrRecordNotFound)
	}
	return nil
}

// UpdateCurrentTemp 更新房间当前温度与温度更新时间
func (r *RoomRepository) UpdateCurrentTemp(roomID int, temp float64, at time.Time) error {
	return r.update(roomID, map[string]interface{}{
		"current_temp":     temp,
		"last_temp_update": at,
	})
}

// UpdateStatus 更新房间状态 (可用/入住/维修)
func (r *RoomRepository) UpdateStatus(roomID int, status types.RoomStatus) error {
	return r.update(roomID, map[string]interface{}{
		"status": status,
	})
}

// UpdateTargetTemp 更新目标温度
func (r *RoomRepository) UpdateTargetTemp(roomID int, target float64) error {
	return r.update(roomID, map[string]interface{}{
		"target_temp": target,
	})
}

// UpdateSpeed 更新风速
func (r *RoomRepository) UpdateSpeed(roomID int, speed types.Speed) error {
	return r.update(roomID, map[string]interface{}{
		"fan_speed": speed,
	})
}

// UpdateMode 更新工作模式并重置目标温度
func (r *RoomRepository) UpdateMode(roomID int, mode types.Mode, defaultTarget float64) error {
	return r.update(roomID, map[string]interface{}{
		"ac_mode":     mode,
		"target_temp": defaultTarget,
	})
}

// PowerOn 开机: 记录会话起点并清除暂停标记
func (r *RoomRepository) PowerOn(roomID int, at time.Time, currentTemp *float64) error {
	fields := map[string]interface{}{
		"ac_on":            true,
		"ac_session_start": at,
		"last_temp_update": at,
		"cooling_paused":   false,
		"pause_start_temp": nil,
	}
	if currentTemp != nil {
		fields["current_temp"] = *currentTemp
	}
	return r.update(roomID, fields)
}

// PowerOff 关机: 清空调度字段, 房间回到缺省状态并冻结温度
func (r *RoomRepository) PowerOff(roomID int, defaultTarget, defaultTemp float64) error {
	return r.update(roomID, map[string]interface{}{
		"ac_on":              false,
		"ac_session_start":   nil,
		"serving_start":      nil,
		"waiting_start":      nil,
		"billing_start_temp": nil,
		"cooling_paused":     false,
		"pause_start_temp":   nil,
		"fan_speed":          types.SpeedMedium,
		"target_temp":        defaultTarget,
		"current_temp":       defaultTemp,
		"last_temp_update":   nil,
	})
}

// MarkServing 进入服务队列: 记录服务起点并锚定计费起始温度
func (r *RoomRepository) MarkServing(roomID int, at time.Time, anchorTemp float64) error {
	return r.update(roomID, map[string]interface{}{
		"serving_start":      at,
		"waiting_start":      nil,
		"billing_start_temp": anchorTemp,
	})
}

// MarkWaiting 进入等待队列: 清除服务起点与计费锚点
func (r *RoomRepository) MarkWaiting(roomID int, at time.Time) error {
	return r.update(roomID, map[string]interface{}{
		"serving_start":      nil,
		"waiting_start":      at,
		"billing_start_temp": nil,
	})
}

// ReanchorServing 服务中途结算后重新锚定计费段
func (r *RoomRepository) ReanchorServing(roomID int, at time.Time, anchorTemp float64) error {
	return r.update(roomID, map[string]interface{}{
		"serving_start":      at,
		"billing_start_temp": anchorTemp,
	})
}

// PauseConditioning 达到目标温度后挂起送风
func (r *RoomRepository) PauseConditioning(roomID int, pauseTemp float64) error {
	return r.update(roomID, map[string]interface{}{
		"cooling_paused":     true,
		"pause_start_temp":   pauseTemp,
		"serving_start":      nil,
		"waiting_start":      nil,
		"billing_start_temp": nil,
	})
}

// ClearPause 清除挂起标记
func (r *RoomRepository) ClearPause(roomID int) error {
	return r.update(roomID, map[string]interface{}{
		"cooling_paused":   false,
		"pause_start_temp": nil,
	})
}

// CheckIn 顾客入住
func (r *RoomRepository) CheckIn(roomID, customerID int, customerName string, at time.Time, dailyRate float64) error {
	fields := map[string]interface{}{
		"status":        types.RoomOccupied,
		"customer_id":   customerID,
		"customer_name": customerName,
		"checkin_time":  at,
	}
	if dailyRate > 0 {
		fields["daily_rate"] = dailyRate
	}
	return r.update(roomID, fields)
}

// CheckOut 顾客退房
func (r *RoomRepository) CheckOut(roomID int) error {
	return r.update(roomID, map[string]interface{}{
		"status":        types.RoomAvailable,
		"customer_id":   nil,
		"customer_name": "",
		"checkin_time":  nil,
	})
}

// ResetForTest 测试接口: 强制设定房间温度, 防止残留状态影响用例.
// 给定温度时缺省温度一并改写, 避免关机后回温到错误的缺省值.
func (r *RoomRepository) ResetForTest(roomID int, temperature, defaultTemp, dailyRate *float64) error {
	fields := map[string]interface{}{}
	if temperature != nil {
		fields["current_temp"] = *temperature
		fields["default_temp"] = *temperature
		fields["last_temp_update"] = nil
	}
	if defaultTemp != nil {
		fields["default_temp"] = *defaultTemp
	}
	if dailyRate != nil {
		fields["daily_rate"] = *dailyRate
	}
	if len(fields) == 0 {
		return nil
	}
	return r.update(roomID, fields)
}

func (r *RoomRepository) GetDB() *gorm.DB {
	return r.db
}
