// internal/clock/clock_test.go

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWall 接管墙钟, 让测试可以精确推进真实时间
type fakeWall struct {
	now time.Time
}

func (f *fakeWall) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func setupFakeWall(t *testing.T) *fakeWall {
	t.Helper()
	f := &fakeWall{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	orig := wallNow
	wallNow = func() time.Time { return f.now }
	t.Cleanup(func() { wallNow = orig })
	return f
}

func TestClockRealTimeSpeed(t *testing.T) {
	wall := setupFakeWall(t)
	c := New(1)

	start := c.Now()
	wall.advance(90 * time.Second)
	require.Equal(t, 90*time.Second, c.Now().Sub(start), "1 倍速下逻辑时间应与墙钟同步")
}

func TestClockAcceleration(t *testing.T) {
	wall := setupFakeWall(t)
	c := New(10)

	start := c.Now()
	wall.advance(6 * time.Second)
	assert.Equal(t, 60*time.Second, c.Now().Sub(start), "10 倍速下 6 秒墙钟应折合 60 逻辑秒")

	// 调速后逻辑时间保持连续
	c.SetSpeed(1)
	mid := c.Now()
	assert.Equal(t, 60*time.Second, mid.Sub(start))
	wall.advance(30 * time.Second)
	assert.Equal(t, 30*time.Second, c.Now().Sub(mid))
}

func TestClockJump(t *testing.T) {
	setupFakeWall(t)
	c := New(1)

	start := c.Now()
	c.JumpBy(10 * time.Minute)
	assert.Equal(t, 10*time.Minute, c.Now().Sub(start))

	// 负向跳转被忽略
	c.JumpBy(-time.Hour)
	assert.Equal(t, 10*time.Minute, c.Now().Sub(start))

	// JumpTo 不允许回拨
	c.JumpTo(start)
	assert.Equal(t, 10*time.Minute, c.Now().Sub(start))

	c.JumpTo(start.Add(time.Hour))
	assert.Equal(t, time.Hour, c.Now().Sub(start))
}

func TestClockPauseResume(t *testing.T) {
	wall := setupFakeWall(t)
	c := New(1)

	start := c.Now()
	wall.advance(5 * time.Second)
	c.Pause()
	frozen := c.Now()
	assert.Equal(t, 5*time.Second, frozen.Sub(start))

	// 暂停期间墙钟流逝不影响逻辑时间
	wall.advance(time.Hour)
	assert.Equal(t, frozen, c.Now())

	// 暂停期间仍可跳转, 这是测试场景的主要驱动方式
	c.JumpBy(120 * time.Second)
	assert.Equal(t, frozen.Add(120*time.Second), c.Now())

	c.Resume()
	wall.advance(3 * time.Second)
	assert.Equal(t, frozen.Add(123*time.Second), c.Now())

	st := c.GetStatus()
	assert.False(t, st.Paused)
	assert.Equal(t, 1.0, st.Speed)
}

func TestClockStatusWhilePaused(t *testing.T) {
	wall := setupFakeWall(t)
	c := New(2)
	wall.advance(4 * time.Second)
	c.Pause()

	st := c.GetStatus()
	require.True(t, st.Paused)
	require.Equal(t, 2.0, st.Speed)
	require.Equal(t, c.Now(), st.LogicalTime)
}
