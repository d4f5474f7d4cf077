// internal/handlers/ac_handler.go

package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotelac/internal/service"
	"hotelac/internal/types"
)

// 开机请求. currentTemp 可选, 测试脚本用它布置初始温度.
type PowerOnRequest struct {
	RoomID      int      `json:"roomId" binding:"required"`
	CurrentTemp *float64 `json:"currentTemp,omitempty"`
}

// 关机请求
type PowerOffRequest struct {
	RoomID int `json:"roomId" binding:"required"`
}

// 温度调节请求
type ChangeTempRequest struct {
	RoomID     int     `json:"roomId" binding:"required"`
	TargetTemp float64 `json:"targetTemp" binding:"required"`
}

// 风速调节请求
type ChangeSpeedRequest struct {
	RoomID   int    `json:"roomId" binding:"required"`
	FanSpeed string `json:"fanSpeed" binding:"required"`
}

// 模式切换请求
type ChangeModeRequest struct {
	RoomID int    `json:"roomId" binding:"required"`
	Mode   string `json:"mode" binding:"required"`
}

type ACHandler struct {
	engine *service.ACService
}

func NewACHandler(engine *service.ACService) *ACHandler {
	return &ACHandler{engine: engine}
}

func (h *ACHandler) PowerOn(c *gin.Context) {
	var req PowerOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	alreadyOn, err := h.engine.PowerOn(req.RoomID, req.CurrentTemp)
	if err != nil {
		fail(c, err)
		return
	}
	if alreadyOn {
		ok(c, "空调已处于开机状态", nil)
		return
	}
	ok(c, "空调开机成功", nil)
}

func (h *ACHandler) PowerOff(c *gin.Context) {
	var req PowerOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.engine.PowerOff(req.RoomID); err != nil {
		fail(c, err)
		return
	}
	ok(c, "空调关机成功", nil)
}

func (h *ACHandler) ChangeTemp(c *gin.Context) {
	var req ChangeTempRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.engine.ChangeTemp(req.RoomID, req.TargetTemp); err != nil {
		fail(c, err)
		return
	}
	ok(c, "目标温度设置成功", gin.H{"targetTemp": req.TargetTemp})
}

func (h *ACHandler) ChangeSpeed(c *gin.Context) {
	var req ChangeSpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.engine.ChangeSpeed(req.RoomID, req.FanSpeed); err != nil {
		fail(c, err)
		return
	}
	ok(c, "风速设置成功", gin.H{"fanSpeed": req.FanSpeed})
}

func (h *ACHandler) ChangeMode(c *gin.Context) {
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

// GetState 房间状态快照, 返回裸载荷 (不套统一信封), 新旧前端共用
func (h *ACHandler) GetState(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Query("roomId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	state, err := h.engine.RequestState(roomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, roomStatePayload(state))
}

// roomStatePayload 同时输出 snake 与 camel 两套键名, 兼容两代前端
func roomStatePayload(st *service.RoomState) gin.H {
	currentTemp := round2(st.CurrentTemp)
	targetTemp := round2(st.TargetTemp)
	var queuePos interface{}
	if st.QueueState == types.QueueWaiting {
		queuePos = st.QueuePos
	}
	return gin.H{
		"id":             st.RoomID,
		"room_id":        st.RoomID,
		"roomId":         st.RoomID,
		"ac_on":          st.ACOn,
		"acOn":           st.ACOn,
		"ac_mode":        st.Mode,
		"mode":           st.Mode,
		"fan_speed":      st.FanSpeed,
		"fanSpeed":       st.FanSpeed,
		"current_temp":   currentTemp,
		"currentTemp":    currentTemp,
		"target_temp":    targetTemp,
		"targetTemp":     targetTemp,
		"default_temp":   st.DefaultTemp,
		"defaultTemp":    st.DefaultTemp,
		"current_cost":   st.CurrentCost,
		"currentCost":    st.CurrentCost,
		"total_cost":     st.TotalCost,
		"totalCost":      st.TotalCost,
		"queueState":     st.QueueState,
		"state":          st.QueueState,
		"servingSeconds": st.ServingSec,
		"waitingSeconds": st.WaitingSec,
		"queuePosition":  queuePos,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
