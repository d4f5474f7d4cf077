// internal/service/statistics_test.go

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/clock"
)

// anchorLogicalDay 把逻辑时钟固定到次日 01:00, 防止用例执行期间跨天
func anchorLogicalDay(clk *clock.Clock) {
	now := clk.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	clk.JumpTo(dayStart.Add(25 * time.Hour))
}

func statsByRoom(stats []RoomUsageStat) map[int]RoomUsageStat {
	m := make(map[int]RoomUsageStat, len(stats))
	for _, s := range stats {
		m[s.RoomID] = s
	}
	return m
}

func seedUsageRecords(t *testing.T, engine *ACService, clk *clock.Clock) {
	t.Helper()
	// 房间 1: 低风 1 分钟后关机
	_, err := engine.PowerOn(1, nil)
	require.NoError(t, err)
	advance(clk, engine, 60*time.Second)
	require.NoError(t, engine.PowerOff(1))

	// 房间 2: 低风 2 分钟换高风, 再跑 1 分钟关机
	_, err = engine.PowerOn(2, nil)
	require.NoError(t, err)
	advance(clk, engine, 120*time.Second)
	require.NoError(t, engine.ChangeSpeed(2, "HIGH"))
	advance(clk, engine, 60*time.Second)
	require.NoError(t, engine.PowerOff(2))
}

func TestDailyReportAggregates(t *testing.T) {
	engine, clk := newTestEngine(t)
	anchorLogicalDay(clk)
	seedUsageRecords(t, engine, clk)

	stats, err := NewStatisticsService(clk).GetDailyReport(clk.Now())
	require.NoError(t, err)
	require.Len(t, stats, 5, "没开过机的房间也要出现在报表里")
	byRoom := statsByRoom(stats)

	r1 := byRoom[1]
	assert.Equal(t, 1, r1.UsageCount)
	assert.Equal(t, 1, r1.RecordCount)
	assert.Equal(t, 1, r1.DispatchCount)
	assert.InDelta(t, 1.0/3.0, r1.TotalFee, 1e-6)
	assert.InDelta(t, 1.0, r1.TotalDuration, 1e-6)
	assert.InDelta(t, 1.0/3.0, r1.AvgTempDiff, 1e-6)

	r2 := byRoom[2]
	assert.Equal(t, 1, r2.UsageCount, "只有关机结算算一个周期")
	assert.Equal(t, 2, r2.RecordCount)
	assert.InDelta(t, 5.0/3.0, r2.TotalFee, 1e-6)
	assert.InDelta(t, 3.0, r2.TotalDuration, 1e-6)
	assert.InDelta(t, 5.0/6.0, r2.AvgTempDiff, 1e-6)

	r3 := byRoom[3]
	assert.Zero(t, r3.RecordCount)
	assert.Zero(t, r3.TotalFee)
}

func TestWeeklyReportWindow(t *testing.T) {
	engine, clk := newTestEngine(t)
	anchorLogicalDay(clk)
	seedUsageRecords(t, engine, clk)
	svc := NewStatisticsService(clk)

	// 三天前开始的一周覆盖今天
	stats, err := svc.GetWeeklyReport(clk.Now().Add(-3 * 24 * time.Hour))
	require.NoError(t, err)
	byRoom := statsByRoom(stats)
	assert.InDelta(t, 1.0/3.0, byRoom[1].TotalFee, 1e-6)
	assert.Equal(t, 2, byRoom[2].RecordCount)

	// 十天前开始的一周在今天之前结束
	stats, err = svc.GetWeeklyReport(clk.Now().Add(-10 * 24 * time.Hour))
	require.NoError(t, err)
	byRoom = statsByRoom(stats)
	assert.Zero(t, byRoom[1].RecordCount)
	assert.Zero(t, byRoom[2].TotalFee)
}

func TestReportFoldsTimeAcceleration(t *testing.T) {
	cfg := testEngineConfig()
	setupTestDB(t, cfg)
	clk := clock.New(10)
	clk.Pause()
	engine := NewACService(cfg, clk)
	anchorLogicalDay(clk)

	// 十倍速下跑 10 逻辑分钟
	_, err := engine.PowerOn(1, nil)
	require.NoError(t, err)
	advance(clk, engine, 600*time.Second)
	require.NoError(t, engine.PowerOff(1))

	svc := NewStatisticsService(clk)
	stats, err := svc.GetDailyReport(clk.Now())
	require.NoError(t, err)
	byRoom := statsByRoom(stats)
	assert.InDelta(t, 1.0, byRoom[1].TotalDuration, 1e-6, "时长折算回物理分钟")
	assert.InDelta(t, 10.0/3.0, byRoom[1].TotalFee, 1e-6, "费用不随倍率折算")

	rows, err := svc.GenerateRoomReport(1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 1.0, rows[0].Duration, 1e-9)
}

func TestRoomReportProportionalRoomFee(t *testing.T) {
	hotel, engine, clk := newTestHotel(t)
	anchorLogicalDay(clk)

	_, err := hotel.CheckIn(1, "张三", "", "", 0)
	require.NoError(t, err)
	_, err = engine.PowerOn(1, nil)
	require.NoError(t, err)
	advance(clk, engine, 120*time.Second)
	require.NoError(t, engine.ChangeSpeed(1, "HIGH"))
	advance(clk, engine, 60*time.Second)
	res, err := hotel.CheckOut(1)
	require.NoError(t, err)
	require.InDelta(t, 5.0/3.0, res.Bill.ACFee, 1e-6)

	rows, err := NewStatisticsService(clk).GenerateRoomReport(1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// 按时间倒序, 高风段在前
	assert.True(t, rows[0].StartTime.After(rows[1].StartTime))
	assert.InDelta(t, 1.0, rows[0].ACFee, 1e-6)
	assert.InDelta(t, 60.0, rows[0].RoomFee, 1e-6, "房费按空调费占比分摊")
	assert.InDelta(t, 61.0, rows[0].Fee, 1e-6)
	assert.InDelta(t, 1.0, rows[0].Duration, 1e-9)
	assert.InDelta(t, 2.0/3.0, rows[1].ACFee, 1e-6)
	assert.InDelta(t, 40.0, rows[1].RoomFee, 1e-6)
	assert.InDelta(t, 40.67, rows[1].Fee, 1e-6)
	assert.InDelta(t, 2.0, rows[1].Duration, 1e-9)
}
