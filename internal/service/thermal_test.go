// internal/service/thermal_test.go

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/db"
	"hotelac/internal/types"
)

func coolingRoom(current, target float64, speed types.Speed) *db.RoomInfo {
	return &db.RoomInfo{
		ACOn:        true,
		ACMode:      types.ModeCooling,
		FanSpeed:    speed,
		CurrentTemp: current,
		TargetTemp:  target,
		DefaultTemp: 32,
	}
}

func TestThermalStepFanRates(t *testing.T) {
	cfg := testEngineConfig()

	cases := []struct {
		speed types.Speed
		want  float64
	}{
		{types.SpeedLow, 30 - 1.0/3.0},
		{types.SpeedMedium, 29.5},
		{types.SpeedHigh, 29.0},
	}
	for _, tc := range cases {
		room := coolingRoom(30, 25, tc.speed)
		got, sig := thermalStep(room, true, time.Minute, cfg, false)
		assert.InDelta(t, tc.want, got, 1e-9, "风速 %s 一分钟后的温度", tc.speed)
		assert.Equal(t, SignalNone, sig)
	}
}

func TestThermalStepHeatingDirection(t *testing.T) {
	cfg := testEngineConfig()
	room := &db.RoomInfo{
		ACOn:        true,
		ACMode:      types.ModeHeating,
		FanSpeed:    types.SpeedMedium,
		CurrentTemp: 18,
		TargetTemp:  22,
		DefaultTemp: 15,
	}
	got, sig := thermalStep(room, true, 2*time.Minute, cfg, false)
	assert.InDelta(t, 19.0, got, 1e-9, "制热模式向上逼近目标温度")
	assert.Equal(t, SignalNone, sig)
}

func TestThermalStepReachWithoutOvershoot(t *testing.T) {
	cfg := testEngineConfig()

	room := coolingRoom(30, 25, types.SpeedHigh)
	got, sig := thermalStep(room, true, 10*time.Minute, cfg, false)
	require.InDelta(t, 25.0, got, 1e-12, "变温量超过剩余温差时恰好停在目标温度")
	assert.Equal(t, SignalReached, sig)

	// 强制推进路径不产生信号
	room = coolingRoom(30, 25, types.SpeedHigh)
	got, sig = thermalStep(room, true, 10*time.Minute, cfg, true)
	assert.InDelta(t, 25.0, got, 1e-12)
	assert.Equal(t, SignalNone, sig)
}

func TestThermalStepEpsilonSnap(t *testing.T) {
	cfg := testEngineConfig()

	// 残差小于容差时直接吸附到目标, 即使本拍没有变温量
	room := coolingRoom(25.005, 25, types.SpeedLow)
	got, sig := thermalStep(room, true, 0, cfg, false)
	assert.Equal(t, 25.0, got)
	assert.Equal(t, SignalReached, sig)
}

func TestThermalStepRewarmDrift(t *testing.T) {
	cfg := testEngineConfig()

	// 等待中的开机房间向缺省温度回温
	room := coolingRoom(24, 22, types.SpeedHigh)
	got, sig := thermalStep(room, false, 2*time.Minute, cfg, false)
	assert.InDelta(t, 25.0, got, 1e-9, "回温速率 0.5 度/分")
	assert.Equal(t, SignalNone, sig, "未挂起的房间回温不触发唤醒")

	// 关机房间同样回温, 不产生信号
	room = coolingRoom(24, 22, types.SpeedHigh)
	room.ACOn = false
	got, sig = thermalStep(room, false, 20*time.Minute, cfg, false)
	assert.InDelta(t, 32.0, got, 1e-9, "回温不越过缺省温度")
	assert.Equal(t, SignalNone, sig)
}

func TestThermalStepWakeThreshold(t *testing.T) {
	cfg := testEngineConfig()
	pauseTemp := 24.0

	paused := func() *db.RoomInfo {
		room := coolingRoom(24, 24, types.SpeedHigh)
		room.CoolingPaused = true
		room.PauseStartTemp = &pauseTemp
		return room
	}

	// 漂移不足 1 度维持挂起
	got, sig := thermalStep(paused(), false, time.Minute, cfg, false)
	assert.InDelta(t, 24.5, got, 1e-9)
	assert.Equal(t, SignalNone, sig)

	// 漂移达到 1 度触发唤醒
	got, sig = thermalStep(paused(), false, 2*time.Minute, cfg, false)
	assert.InDelta(t, 25.0, got, 1e-9)
	assert.Equal(t, SignalWake, sig)

	// 强制推进不唤醒
	_, sig = thermalStep(paused(), false, 2*time.Minute, cfg, true)
	assert.Equal(t, SignalNone, sig)

	// 挂起锚点缺失时不唤醒
	room := paused()
	room.PauseStartTemp = nil
	_, sig = thermalStep(room, false, 2*time.Minute, cfg, false)
	assert.Equal(t, SignalNone, sig)
}

func TestThermalStepNegativeElapsed(t *testing.T) {
	cfg := testEngineConfig()
	room := coolingRoom(30, 25, types.SpeedHigh)
	got, sig := thermalStep(room, true, -time.Minute, cfg, false)
	assert.InDelta(t, 30.0, got, 1e-9, "时钟异常时温度保持不变")
	assert.Equal(t, SignalNone, sig)
}

func TestMoveToward(t *testing.T) {
	assert.InDelta(t, 26.0, moveToward(27, 25, 1), 1e-12)
	assert.InDelta(t, 26.0, moveToward(25, 27, 1), 1e-12)
	assert.Equal(t, 25.0, moveToward(26, 25, 1), "恰好够量时落在目标上")
	assert.Equal(t, 25.0, moveToward(26, 25, 5), "变温量不越过目标")
	assert.Equal(t, 26.0, moveToward(26, 25, 0), "零变温量原地不动")
	assert.Equal(t, 26.0, moveToward(26, 25, -1))
}
