// internal/types/ac_types.go

package types

import "strings"

// Mode 空调工作模式
type Mode string

const (
	ModeCooling Mode = "COOLING"
	ModeHeating Mode = "HEATING"
)

// ParseMode 解析工作模式, 大小写不敏感
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ModeCooling):
		return ModeCooling, true
	case string(ModeHeating):
		return ModeHeating, true
	}
	return "", false
}

// Speed 风速
type Speed string

const (
	SpeedLow    Speed = "LOW"
	SpeedMedium Speed = "MEDIUM"
	SpeedHigh   Speed = "HIGH"
)

// ParseSpeed 解析风速, 大小写不敏感
func ParseSpeed(s string) (Speed, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SpeedLow):
		return SpeedLow, true
	case string(SpeedMedium):
		return SpeedMedium, true
	case string(SpeedHigh):
		return SpeedHigh, true
	}
	return "", false
}

// Priority 调度优先级: 风速越高优先级越高
func (s Speed) Priority() int {
	switch s {
	case SpeedHigh:
		return 3
	case SpeedMedium:
		return 2
	case SpeedLow:
		return 1
	}
	return 0
}

// QueueState 房间在调度器中的状态
type QueueState string

const (
	QueueServing QueueState = "SERVING"
	QueueWaiting QueueState = "WAITING"
	QueuePaused  QueueState = "PAUSED"
	QueueIdle    QueueState = "IDLE"
)

// DetailKind 账单明细类型
type DetailKind string

const (
	DetailAC            DetailKind = "AC"              // 温控费用明细
	DetailPowerOffCycle DetailKind = "POWER_OFF_CYCLE" // 关机结算记录
	DetailRoomFee       DetailKind = "ROOM_FEE"        // 房费记录
)

// RoomStatus 房间入住状态
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)

// TempRange 温度范围
type TempRange struct {
	Min float64
	Max float64
}

// Contains 判断目标温度是否在范围内
func (r TempRange) Contains(t float64) bool {
	return t >= r.Min && t <= r.Max
}
