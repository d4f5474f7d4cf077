// internal/handlers/report_handler.go

package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/clock"
	"hotelac/internal/service"
)

const reportDateLayout = "2006-01-02"

type ReportHandler struct {
	stats *service.StatisticsService
	clk   *clock.Clock
}

func NewReportHandler(stats *service.StatisticsService, clk *clock.Clock) *ReportHandler {
	return &ReportHandler{stats: stats, clk: clk}
}

// reportDate 解析 ?date= 参数, 缺省取逻辑时钟的当天
func (h *ReportHandler) reportDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return h.clk.Now(), nil
	}
	return time.Parse(reportDateLayout, raw)
}

// GetDailyReport 日报: 指定日期全部房间的使用统计
func (h *ReportHandler) GetDailyReport(c *gin.Context) {
	date, err := h.reportDate(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	stats, err := h.stats.GetDailyReport(date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  "获取日报成功",
		Data: stats,
	})
}

// GetWeeklyReport 周报: 从指定日期起 7 天
func (h *ReportHandler) GetWeeklyReport(c *gin.Context) {
	date, err := h.reportDate(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	stats, err := h.stats.GetWeeklyReport(date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  "获取周报成功",
		Data: stats,
	})
}

// GetRoomReport 单房间详单报表, 含按比例分摊的房费
func (h *ReportHandler) GetRoomReport(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	rows, err := h.stats.GenerateRoomReport(roomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  "获取房间报表成功",
		Data: rows,
	})
}

// ExportReportCSV 导出日报/周报 CSV, period=daily|weekly
func (h *ReportHandler) ExportReportCSV(c *gin.Context) {
	date, err := h.reportDate(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	period := c.DefaultQuery("period", "daily")
	var stats []service.RoomUsageStat
	switch period {
	case "daily":
		stats, err = h.stats.GetDailyReport(date)
	case "weekly":
		stats, err = h.stats.GetWeeklyReport(date)
	default:
		c.JSON(http.StatusBadRequest, Response{
			Code: 400,
			Msg:  "period 必须是 daily 或 weekly",
		})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("\xEF\xBB\xBF") // UTF-8 BOM
	writer := csv.NewWriter(&sb)
	_ = writer.Write([]string{"房间号", "开机周期数", "总时长(分钟)", "总费用", "调度次数", "详单条数", "平均温差"})
	for _, st := range stats {
		_ = writer.Write([]string{
			strconv.Itoa(st.RoomID),
			strconv.Itoa(st.UsageCount),
			strconv.FormatFloat(st.TotalDuration, 'f', 1, 64),
			strconv.FormatFloat(st.TotalFee, 'f', 2, 64),
			strconv.Itoa(st.DispatchCount),
			strconv.Itoa(st.RecordCount),
			strconv.FormatFloat(st.AvgTempDiff, 'f', 2, 64),
		})
	}
	writer.Flush()

	filename := fmt.Sprintf("report_%s_%s.csv", period, date.Format(reportDateLayout))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(sb.String()))
}
