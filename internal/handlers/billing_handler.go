// internal/handlers/billing_handler.go

package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/db"
	"hotelac/internal/service"
	"hotelac/internal/types"
	"hotelac/internal/utils"
)

const detailTimeLayout = "2006-01-02 15:04:05"

type BillingHandler struct {
	engine  *service.ACService
	hotel   *service.HotelService
	details *db.DetailRepository
}

func NewBillingHandler(engine *service.ACService, hotel *service.HotelService) *BillingHandler {
	return &BillingHandler{
		engine:  engine,
		hotel:   hotel,
		details: db.NewDetailRepository(),
	}
}

// GetCurrentFee 房间当前费用视图 (房费 + 空调费 + 在途)
func (h *BillingHandler) GetCurrentFee(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Query("roomId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	fee, err := h.engine.GetCurrentFeeDetail(roomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  "获取费用成功",
		Data: fee,
	})
}

// GetDetails 查询房间详单, 时间范围可选 (格式: 2024-11-30 00:00:00)
func (h *BillingHandler) GetDetails(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Query("roomId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	var startTime, endTime *time.Time
	if raw := c.Query("startTime"); raw != "" {
		parsed, parseErr := time.Parse(detailTimeLayout, raw)
		if parseErr != nil {
			badRequest(c, parseErr)
			return
		}
		startTime = &parsed
	}
	if raw := c.Query("endTime"); raw != "" {
		parsed, parseErr := time.Parse(detailTimeLayout, raw)
		if parseErr != nil {
			badRequest(c, parseErr)
			return
		}
		endTime = &parsed
	}
	if (startTime == nil) != (endTime == nil) {
		c.JSON(http.StatusBadRequest, Response{
			Code: 400,
			Msg:  "startTime 与 endTime 必须成对给出",
		})
		return
	}

	details, err := h.engine.ListDetails(roomID, startTime, endTime)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  "获取详单成功",
		Data: details,
	})
}

// ListBills 账单列表, 可按房间过滤, unpaid=true 只看未结清
func (h *BillingHandler) ListBills(c *gin.Context) {
	var (
		bills []db.Bill
		err   error
	)
	if raw := c.Query("roomId"); raw != "" {
		roomID, parseErr := strconv.Atoi(raw)
		if parseErr != nil {
			badRequest(c, parseErr)
			return
		}
		bills, err = h.hotel.ListBillsByRoom(roomID)
	} else {
		bills, err = h.hotel.ListBills(c.Query("unpaid") == "true")
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  "获取账单成功",
		Data: bills,
	})
}

// GetBill 按账单号查询
func (h *BillingHandler) GetBill(c *gin.Context) {
	billID, err := strconv.Atoi(c.Param("billId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	bill, err := h.hotel.GetBill(billID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  "获取账单成功",
		Data: bill,
	})
}

// PayBill 结清账单
func (h *BillingHandler) PayBill(c *gin.Context) {
	billID, err := strconv.Atoi(c.Param("billId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.hotel.PayBill(billID); err != nil {
		fail(c, err)
		return
	}
	ok(c, "账单已结清", nil)
}

// CancelBill 作废账单
func (h *BillingHandler) CancelBill(c *gin.Context) {
	billID, err := strconv.Atoi(c.Param("billId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.hotel.CancelBill(billID); err != nil {
		fail(c, err)
		return
	}
	ok(c, "账单已作废", nil)
}

// GetPrintableBill 打印视图
func (h *BillingHandler) GetPrintableBill(c *gin.Context) {
	billID, err := strconv.Atoi(c.Param("billId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	printable, err := h.hotel.BuildPrintableBill(billID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, printable)
}

// ExportBillPDF 生成账单 PDF 并以附件返回
func (h *BillingHandler) ExportBillPDF(c *gin.Context) {
	billID, err := strconv.Atoi(c.Param("billId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	printable, err := h.hotel.BuildPrintableBill(billID)
	if err != nil {
		fail(c, err)
		return
	}
	pdf, err := utils.GenerateBillPDF(printable)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=bill_%d.pdf", billID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ExportDetailsCSV 导出详单 CSV, 带 BOM 方便 Excel 打开不乱码
func (h *BillingHandler) ExportDetailsCSV(c *gin.Context) {
	var (
		details []db.BillDetail
		err     error
	)
	if raw := c.Query("roomId"); raw != "" {
		roomID, parseErr := strconv.Atoi(raw)
		if parseErr != nil {
			badRequest(c, parseErr)
			return
		}
		details, err = h.details.GetDetailsByRoomDesc(roomID)
	} else {
		details, err = h.details.GetAllDetailsDesc()
	}
	if err != nil {
		fail(c, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("\xEF\xBB\xBF") // UTF-8 BOM
	writer := csv.NewWriter(&sb)
	_ = writer.Write([]string{"房间号", "开始时间", "结束时间", "时长(分钟)", "风速", "模式", "费率", "费用", "类型"})
	for _, d := range details {
		_ = writer.Write([]string{
			strconv.Itoa(d.RoomID),
			d.StartTime.Format(detailTimeLayout),
			d.EndTime.Format(detailTimeLayout),
			strconv.FormatFloat(d.ServeTime, 'f', 0, 64),
			string(d.FanSpeed),
			string(d.ACMode),
			strconv.FormatFloat(d.Rate, 'f', 2, 64),
			strconv.FormatFloat(d.Cost, 'f', 2, 64),
			detailKindLabel(d.Kind),
		})
	}
	writer.Flush()

	c.Header("Content-Disposition", "attachment; filename=bill_details.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(sb.String()))
}

func detailKindLabel(kind types.DetailKind) string {
	switch kind {
	case types.DetailPowerOffCycle:
		return "关机结算(房费周期)"
	case types.DetailRoomFee:
		return "房费"
	default:
		return "空调运行"
	}
}
