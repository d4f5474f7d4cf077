// internal/handlers/testctl_handler.go

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/clock"
	"hotelac/internal/service"
)

// InitRoomRequest 测试前重置房间状态, 温度/费率可选
type InitRoomRequest struct {
	RoomID      int      `json:"roomId" binding:"required"`
	Temperature *float64 `json:"temperature"`
	DefaultTemp *float64 `json:"defaultTemp"`
	DailyRate   *float64 `json:"dailyRate"`
}

type SetSpeedRequest struct {
	Speed *float64 `json:"speed" binding:"required"`
}

type JumpRequest struct {
	AddMinutes *float64 `json:"add_minutes" binding:"required"`
}

// TestHandler 测试辅助接口: 房间初始化与逻辑时钟控制.
// 只挂在测试/验收环境, 不做鉴权.
type TestHandler struct {
	engine *service.ACService
	clk    *clock.Clock
}

func NewTestHandler(engine *service.ACService, clk *clock.Clock) *TestHandler {
	return &TestHandler{engine: engine, clk: clk}
}

// InitRoom 把房间重置为给定初始温度, 清除上次温度更新时间防止跳变
func (h *TestHandler) InitRoom(c *gin.Context) {
	var req InitRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.engine.InitRoomForTest(req.RoomID, req.Temperature, req.DefaultTemp, req.DailyRate); err != nil {
		fail(c, err)
		return
	}
	msg := fmt.Sprintf("Room %d reset", req.RoomID)
	if req.Temperature != nil {
		msg = fmt.Sprintf("Room %d reset to %.1f°C", req.RoomID, *req.Temperature)
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// SetSpeed 调整时间倍率
func (h *TestHandler) SetSpeed(c *gin.Context) {
	var req SetSpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if *req.Speed < 0 {
		c.JSON(http.StatusBadRequest, Response{
			Code: 400,
			Msg:  "speed 不能为负",
		})
		return
	}
	h.clk.SetSpeed(*req.Speed)
	ok(c, "时间倍率已调整", h.clk.GetStatus())
}

// Jump 逻辑时间向前拨 add_minutes 分钟, 温度与调度在下一个 tick 生效
func (h *TestHandler) Jump(c *gin.Context) {
	var req JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if *req.AddMinutes < 0 {
		c.JSON(http.StatusBadRequest, Response{
			Code: 400,
			Msg:  "add_minutes 不能为负",
		})
		return
	}
	h.clk.JumpBy(time.Duration(*req.AddMinutes * float64(time.Minute)))
	ok(c, "逻辑时间已前进", h.clk.GetStatus())
}

// Pause 冻结逻辑时间
func (h *TestHandler) Pause(c *gin.Context) {
	h.clk.Pause()
	ok(c, "逻辑时间已暂停", h.clk.GetStatus())
}

// Resume 恢复逻辑时间
func (h *TestHandler) Resume(c *gin.Context) {
	h.clk.Resume()
	ok(c, "逻辑时间已恢复", h.clk.GetStatus())
}

// TimeStatus 时钟快照
func (h *TestHandler) TimeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.clk.GetStatus())
}
