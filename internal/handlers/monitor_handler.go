// internal/handlers/monitor_handler.go

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/service"
)

type MonitorHandler struct {
	engine *service.ACService
}

func NewMonitorHandler(engine *service.ACService) *MonitorHandler {
	return &MonitorHandler{engine: engine}
}

// GetScheduleStatus 调度器全局状态: 容量, 时间片与两个队列
func (h *MonitorHandler) GetScheduleStatus(c *gin.Context) {
	status, err := h.engine.GetScheduleStatus()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetRoomStatus 监控大屏的全房间快照
func (h *MonitorHandler) GetRoomStatus(c *gin.Context) {
	states, err := h.engine.ListRoomStatus()
	if err != nil {
		fail(c, err)
		return
	}
	result := make([]gin.H, 0, len(states))
	for _, st := range states {
		result = append(result, gin.H{
			"roomId":      st.RoomID,
			"currentTemp": round2(st.CurrentTemp),
			"defaultTemp": st.DefaultTemp,
			"targetTemp":  round2(st.TargetTemp),
			"fanSpeed":    st.FanSpeed,
			"mode":        st.Mode,
			"acOn":        st.ACOn,
		})
	}
	c.JSON(http.StatusOK, result)
}

// GetQueueStatus 旧版监控端的队列视图, 带入队时刻
func (h *MonitorHandler) GetQueueStatus(c *gin.Context) {
	status, err := h.engine.GetScheduleStatus()
	if err != nil {
		fail(c, err)
		return
	}
	serving := make([]gin.H, 0, len(status.Serving))
	for _, item := range status.Serving {
		serving = append(serving, gin.H{
			"roomId":      item.RoomID,
			"fanSpeed":    item.FanSpeed,
			"servingTime": isoTime(item.ServingSince),
		})
	}
	waiting := make([]gin.H, 0, len(status.Waiting))
	for _, item := range status.Waiting {
		waiting = append(waiting, gin.H{
			"roomId":      item.RoomID,
			"fanSpeed":    item.FanSpeed,
			"waitingTime": isoTime(item.WaitingSince),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"servingQueue": serving,
		"waitingQueue": waiting,
	})
}

func isoTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
