// internal/service/thermal.go

package service

import (
	"math"
	"time"

	"hotelac/internal/config"
	"hotelac/internal/db"
)

// TempSignal 温度推进产生的状态信号
type TempSignal int

const (
	SignalNone TempSignal = iota
	// SignalReached 服务中达到目标温度
	SignalReached
	// SignalWake 挂起后温度漂移超限, 需要重新调度
	SignalWake
)

const (
	reachEpsilon  = 0.01 // 判定到达目标温度的容差
	wakeThreshold = 1.0  // 挂起后触发唤醒的漂移量 (摄氏度)
)

// thermalStep 纯函数: 计算房间经过 elapsed 逻辑时间后的温度与信号.
//
// 服务中的房间以风速对应速率逼近目标温度, 不会越过目标;
// 其余情况以回温速率漂移向初始温度. force 路径永远不产生信号,
// 这是打破 "结算 -> 推进 -> 信号 -> 再调度" 循环的关键约束.
func thermalStep(room *db.RoomInfo, isServing bool, elapsed time.Duration, cfg *config.EngineConfig, force bool) (float64, TempSignal) {
	minutes := elapsed.Minutes()
	if minutes < 0 {
		minutes = 0
	}

	if room.ACOn && isServing {
		rate := cfg.FanRate(room.FanSpeed)
		newTemp := moveToward(room.CurrentTemp, room.TargetTemp, rate*minutes)
		if math.Abs(newTemp-room.TargetTemp) < reachEpsilon {
			newTemp = room.TargetTemp
			if !force {
				return newTemp, SignalReached
			}
		}
		return newTemp, SignalNone
	}

	// 非服务状态: 朝初始温度回温
	newTemp := moveToward(room.CurrentTemp, room.DefaultTemp, cfg.RewarmRate*minutes)
	if !force && room.ACOn && room.CoolingPaused && room.PauseStartTemp != nil {
		if math.Abs(newTemp-*room.PauseStartTemp) >= wakeThreshold {
			return newTemp, SignalWake
		}
	}
	return newTemp, SignalNone
}

// moveToward 把 current 向 target 移动至多 maxDelta, 不越过目标
func moveToward(current, target, maxDelta float64) float64 {
	if maxDelta <= 0 {
		return current
	}
	diff := target - current
	if math.Abs(diff) <= maxDelta {
		return target
	}
	if diff > 0 {
		return current + maxDelta
	}
	return current - maxDelta
}
