// internal/service/statistics.go

package service

import (
	"math"
	"time"

	"hotelac/internal/clock"
	"hotelac/internal/db"
	"hotelac/internal/types"
)

// RoomUsageStat 单个房间在统计窗口内的聚合数据.
// 时长按时钟倍率折算回物理分钟.
type RoomUsageStat struct {
	RoomID        int     `json:"roomId"`
	UsageCount    int     `json:"usageCount"`    // 开关机周期数
	TotalDuration float64 `json:"totalDuration"` // 物理分钟
	TotalFee      float64 `json:"totalFee"`
	DispatchCount int     `json:"dispatchCount"`
	RecordCount   int     `json:"recordCount"`
	AvgTempDiff   float64 `json:"avgTempDiff"`
}

// RoomReportRow 房间详单报表的一行, 房费按空调费占比分摊
type RoomReportRow struct {
	RoomID    int              `json:"roomId"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime"`
	Duration  float64          `json:"duration"`
	FanSpeed  types.Speed      `json:"fanSpeed"`
	Rate      float64          `json:"rate"`
	ACFee     float64          `json:"acFee"`
	RoomFee   float64          `json:"roomFee"`
	Fee       float64          `json:"fee"`
	Kind      types.DetailKind `json:"type"`
}

type StatisticsService struct {
	rooms   *db.RoomRepository
	details *db.DetailRepository
	bills   *db.BillRepository
	clk     *clock.Clock
}

func NewStatisticsService(clk *clock.Clock) *StatisticsService {
	return &StatisticsService{
		rooms:   db.NewRoomRepository(),
		details: db.NewDetailRepository(),
		bills:   db.NewBillRepository(),
		clk:     clk,
	}
}

// GetDailyReport 获取指定日期的日报数据
func (s *StatisticsService) GetDailyReport(date time.Time) ([]RoomUsageStat, error) {
	startTime := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endTime := startTime.Add(24 * time.Hour).Add(-time.Second)
	return s.getReport(startTime, endTime)
}

// GetWeeklyReport 获取从指定日期起一周的周报数据
func (s *StatisticsService) GetWeeklyReport(startDate time.Time) ([]RoomUsageStat, error) {
	startTime := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	endTime := startTime.Add(7 * 24 * time.Hour).Add(-time.Second)
	return s.getReport(startTime, endTime)
}

func (s *StatisticsService) getReport(startTime, endTime time.Time) ([]RoomUsageStat, error) {
	factor := s.clk.Speed()
	if factor <= 0 {
		factor = 1
	}
	rooms, err := s.rooms.GetAllRooms()
	if err != nil {
		return nil, errInternal(err, "统计时获取房间列表失败")
	}
	records, err := s.details.GetDetailsInRange(startTime, endTime)
	if err != nil {
		return nil, errInternal(err, "统计时查询详单失败")
	}

	// 没开过机的房间也要出现在报表里, 数据为零
	index := make(map[int]int, len(rooms))
	stats := make([]RoomUsageStat, 0, len(rooms))
	for _, room := range rooms {
		index[room.RoomID] = len(stats)
		stats = append(stats, RoomUsageStat{RoomID: room.RoomID})
	}

	tempSum := make(map[int]float64)
	for _, r := range records {
		i, ok := index[r.RoomID]
		if !ok {
			continue // 房间删除后遗留的详单
		}
		st := &stats[i]
		st.RecordCount++
		st.DispatchCount++
		st.TotalFee += r.Cost
		st.TotalDuration += r.ServeTime / factor
		if r.Kind == types.DetailPowerOffCycle {
			st.UsageCount++
		}
		tempSum[r.RoomID] += r.TempChange
	}
	for i := range stats {
		if stats[i].RecordCount > 0 {
			stats[i].AvgTempDiff = tempSum[stats[i].RoomID] / float64(stats[i].RecordCount)
		}
	}
	return stats, nil
}

// GenerateRoomReport 生成单个房间的详单报表, 按时间倒序.
// 每行的房费取该行空调费占总空调费的比例乘以总房费.
func (s *StatisticsService) GenerateRoomReport(roomID int) ([]RoomReportRow, error) {
	details, err := s.details.GetDetailsByRoomDesc(roomID)
	if err != nil {
		return nil, errInternal(err, "查询房间 %d 详单失败", roomID)
	}
	bills, err := s.bills.GetBillsByRoom(roomID)
	if err != nil {
		return nil, errInternal(err, "查询房间 %d 账单失败", roomID)
	}

	var totalRoomFee, totalACFee float64
	for _, b := range bills {
		totalRoomFee += b.RoomFee
		totalACFee += b.ACFee
	}

	factor := s.clk.Speed()
	if factor <= 0 {
		factor = 1
	}

	rows := make([]RoomReportRow, 0, len(details))
	for _, d := range details {
		var roomFeePortion float64
		if totalACFee > 0 {
			roomFeePortion = d.Cost / totalACFee * totalRoomFee
		}
		rows = append(rows, RoomReportRow{
			RoomID:    d.RoomID,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Duration:  math.Round(d.ServeTime/factor*10) / 10,
			FanSpeed:  d.FanSpeed,
			Rate:      d.Rate,
			ACFee:     d.Cost,
			RoomFee:   math.Round(roomFeePortion*100) / 100,
			Fee:       math.Round((d.Cost+roomFeePortion)*100) / 100,
			Kind:      d.Kind,
		})
	}
	return rows, nil
}
