// internal/handlers/hotel_handler.go

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotelac/internal/service"
)

// 入住登记请求. dailyRate 可选, 前台可以按协议价覆盖房价.
type CheckInRequest struct {
	RoomID    int     `json:"roomId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	IDCard    string  `json:"idCard"`
	Phone     string  `json:"phoneNumber"`
	DailyRate float64 `json:"dailyRate"`
}

type CheckOutRequest struct {
	RoomID int `json:"roomId" binding:"required"`
}

type HotelHandler struct {
	hotel *service.HotelService
}

func NewHotelHandler(hotel *service.HotelService) *HotelHandler {
	return &HotelHandler{hotel: hotel}
}

// GetAvailableRooms 可入住房间列表
func (h *HotelHandler) GetAvailableRooms(c *gin.Context) {
	rooms, err := h.hotel.GetAvailableRooms()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetAvailableRoomIDs 只返回可入住的房间号, 旧版前台下拉框用
func (h *HotelHandler) GetAvailableRoomIDs(c *gin.Context) {
	rooms, err := h.hotel.GetAvailableRooms()
	if err != nil {
		fail(c, err)
		return
	}
	ids := make([]int, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.RoomID)
	}
	c.JSON(http.StatusOK, ids)
}

func (h *HotelHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	customer, err := h.hotel.CheckIn(req.RoomID, req.Name, req.IDCard, req.Phone, req.DailyRate)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "入住成功", gin.H{
		"roomId":     req.RoomID,
		"customerId": customer.ID,
	})
}

// CheckOut 退房结账, 路径参数与请求体两种写法都支持
func (h *HotelHandler) CheckOut(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil {
		var req CheckOutRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			badRequest(c, bindErr)
			return
		}
		roomID = req.RoomID
	}
	result, checkoutErr := h.hotel.CheckOut(roomID)
	if checkoutErr != nil {
		fail(c, checkoutErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
