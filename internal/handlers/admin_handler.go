// internal/handlers/admin_handler.go

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotelac/internal/service"
)

type AdminHandler struct {
	engine *service.ACService
}

func NewAdminHandler(engine *service.ACService) *AdminHandler {
	return &AdminHandler{engine: engine}
}

// ListRoomStatus 管理端大屏: 全部房间的完整快照
func (h *AdminHandler) ListRoomStatus(c *gin.Context) {
	states, err := h.engine.ListRoomStatus()
	if err != nil {
		fail(c, err)
		return
	}
	result := make([]gin.H, 0, len(states))
	for _, st := range states {
		payload := roomStatePayload(st)
		payload["occupied"] = st.Occupied
		payload["daily_rate"] = st.DailyRate
		payload["dailyRate"] = st.DailyRate
		result = append(result, payload)
	}
	c.JSON(http.StatusOK, result)
}

// SetMode 管理端批量入口的别名, 与 /ac/mode 行为一致
func (h *AdminHandler) SetMode(c *gin.Context) {
	var req ChangeModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.engine.ChangeMode(req.RoomID, req.Mode); err != nil {
		fail(c, err)
		return
	}
	ok(c, "工作模式设置成功", gin.H{"mode": req.Mode})
}

// TakeRoomOffline 房间下线维修
func (h *AdminHandler) TakeRoomOffline(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	room, err := h.engine.TakeRoomOffline(roomID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "房间已标记为维修", gin.H{"room": room})
}

// BringRoomOnline 维修完成重新上线
func (h *AdminHandler) BringRoomOnline(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	room, err := h.engine.BringRoomOnline(roomID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "房间已重新可用", gin.H{"room": room})
}

// ForceRotation 立即跑一轮调度
func (h *AdminHandler) ForceRotation(c *gin.Context) {
	status, err := h.engine.ForcePass()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "调度队列已强制轮转",
		"schedule": status,
	})
}

// SimulateTemperature 立即推进一次温度, 排障与演示用
func (h *AdminHandler) SimulateTemperature(c *gin.Context) {
	h.engine.Tick()
	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}
