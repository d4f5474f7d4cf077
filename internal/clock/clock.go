// internal/clock/clock.go

package clock

import (
	"sync"
	"time"
)

// wallNow 墙钟读取函数, 测试中可替换
var wallNow = time.Now

// Clock 可控逻辑时钟.
//
// 逻辑时间 = l0 + speed * (墙钟时间 - w0).
// 调速/跳转/暂停/恢复都会重设锚点, 保证逻辑时间连续不回退.
// 引擎内所有时间都从这里读取, 不允许直接使用墙钟.
type Clock struct {
	mu     sync.Mutex
	w0     time.Time // 墙钟锚点
	l0     time.Time // 逻辑锚点
	speed  float64
	paused bool
}

// Status 时钟快照
type Status struct {
	LogicalTime time.Time `json:"logicalTime"`
	WallTime    time.Time `json:"wallTime"`
	Speed       float64   `json:"speed"`
	Paused      bool      `json:"paused"`
}

// New 创建逻辑时钟, speed 为时间加速倍率, 非正值按 1 处理
func New(speed float64) *Clock {
	if speed <= 0 {
		speed = 1
	}
	w := wallNow()
	return &Clock{
		w0:    w,
		l0:    w,
		speed: speed,
	}
}

// Now 返回当前逻辑时间
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked()
}

func (c *Clock) nowLocked() time.Time {
	if c.paused {
		return c.l0
	}
	elapsed := wallNow().Sub(c.w0)
	return c.l0.Add(time.Duration(float64(elapsed) * c.speed))
}

// rebaseLocked 把锚点推进到当前时刻, 使后续参数变化不产生跳变
func (c *Clock) rebaseLocked() {
	c.l0 = c.nowLocked()
	c.w0 = wallNow()
}

// SetSpeed 调整时间倍率, 逻辑时间保持连续
func (c *Clock) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebaseLocked()
	c.speed = speed
}

// Speed 返回当前倍率
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// JumpBy 把逻辑时间向前拨动 d, 负值拒绝不动
func (c *Clock) JumpBy(d time.Duration) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebaseLocked()
	c.l0 = c.l0.Add(d)
}

// JumpTo 把逻辑时间拨到 t, 早于当前逻辑时间的目标被忽略
func (c *Clock) JumpTo(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebaseLocked()
	if t.Before(c.l0) {
		return
	}
	c.l0 = t
}

// Pause 冻结逻辑时间
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.rebaseLocked()
	c.paused = true
}

// Resume 恢复逻辑时间流动
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.w0 = wallNow()
	c.paused = false
}

// GetStatus 返回时钟快照
func (c *Clock) GetStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		LogicalTime: c.nowLocked(),
		WallTime:    wallNow(),
		Speed:       c.speed,
		Paused:      c.paused,
	}
}
