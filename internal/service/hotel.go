// internal/service/hotel.go

package service

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/logger"
	"hotelac/internal/types"
)

// HotelService 前台业务: 入住登记, 退房结账与账单管理.
// 空调相关的状态变更都走引擎, 保证结算与调度的一致性.
type HotelService struct {
	engine    *ACService
	cfg       *config.EngineConfig
	clk       *clock.Clock
	rooms     *db.RoomRepository
	customers *db.CustomerRepository
	details   *db.DetailRepository
	bills     *db.BillRepository
}

func NewHotelService(engine *ACService, cfg *config.EngineConfig, clk *clock.Clock) *HotelService {
	return &HotelService{
		engine:    engine,
		cfg:       cfg,
		clk:       clk,
		rooms:     db.NewRoomRepository(),
		customers: db.NewCustomerRepository(),
		details:   db.NewDetailRepository(),
		bills:     db.NewBillRepository(),
	}
}

// GetAvailableRooms 查询可入住的房间
func (h *HotelService) GetAvailableRooms() ([]db.RoomInfo, error) {
	rooms, err := h.rooms.GetAvailableRooms()
	if err != nil {
		return nil, errInternal(err, "查询可用房间失败")
	}
	return rooms, nil
}

// CheckIn 入住登记. 房间必须处于可用状态;
// 管理端试机留下的空调状态与无主详单在登记前清理干净.
func (h *HotelService) CheckIn(roomID int, name, idCard, phone string, dailyRate float64) (*db.Customer, error) {
	if name == "" {
		return nil, errInvalidArgument("顾客姓名不能为空")
	}
	room, err := h.getRoom(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != types.RoomAvailable {
		return nil, errPrecondition("房间 %d 当前不可入住", roomID)
	}

	if room.ACOn {
		if err := h.engine.PowerOff(roomID); err != nil {
			return nil, err
		}
		if err := h.details.DeleteOrphanByRoom(roomID); err != nil {
			return nil, errInternal(err, "房间 %d 清理试机详单失败", roomID)
		}
	}

	t := h.clk.Now()
	customer := &db.Customer{
		Name:        name,
		IDCard:      idCard,
		Phone:       phone,
		RoomID:      &roomID,
		CheckinTime: &t,
		Status:      "CHECKED_IN",
	}
	if err := h.customers.CreateCustomer(customer); err != nil {
		return nil, errInternal(err, "登记顾客失败")
	}
	if err := h.rooms.CheckIn(roomID, customer.ID, name, t, dailyRate); err != nil {
		return nil, errInternal(err, "房间 %d 入住写入失败", roomID)
	}
	logger.Info("房间 %d 入住登记: %s", roomID, name)
	return customer, nil
}

// CheckoutCustomer 退房单上的顾客信息
type CheckoutCustomer struct {
	Name   string `json:"name"`
	IDCard string `json:"idCard"`
	Phone  string `json:"phoneNumber"`
}

// CheckoutDetail 退房单上的一条空调消费记录
type CheckoutDetail struct {
	RoomID     int         `json:"roomId"`
	StartTime  time.Time   `json:"startTime"`
	EndTime    time.Time   `json:"endTime"`
	Duration   float64     `json:"duration"`
	FanSpeed   types.Speed `json:"fanSpeed"`
	CurrentFee float64     `json:"currentFee"`
	Fee        float64     `json:"fee"`
}

// CheckoutBill 退房单上的账单汇总
type CheckoutBill struct {
	BillID       int     `json:"billId"`
	RoomID       int     `json:"roomId"`
	CheckinTime  string  `json:"checkinTime"`
	CheckoutTime string  `json:"checkoutTime"`
	Duration     string  `json:"duration"`
	RoomFee      float64 `json:"roomFee"`
	ACFee        float64 `json:"acFee"`
	TotalAmount  float64 `json:"totalAmount"`
}

// CheckoutResult 退房结账的完整返回
type CheckoutResult struct {
	Customer CheckoutCustomer `json:"customer"`
	Details  []CheckoutDetail `json:"detailBill"`
	Bill     CheckoutBill     `json:"bill"`
}

// CheckOut 退房结账: 先关机结算在途费用, 再按入住时间窗生成账单.
// 没有入住记录但空调开着的房间 (管理端试机) 只做状态复位.
func (h *HotelService) CheckOut(roomID int) (*CheckoutResult, error) {
	room, err := h.getRoom(roomID)
	if err != nil {
		return nil, err
	}

	customer, err := h.customers.GetCurrentByRoom(roomID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInternal(err, "查询房间 %d 入住记录失败", roomID)
		}
		if room.ACOn {
			if offErr := h.engine.PowerOff(roomID); offErr != nil {
				logger.Warn("房间 %d 复位关机失败: %v", roomID, offErr)
			}
		}
		if resetErr := h.rooms.CheckOut(roomID); resetErr != nil {
			return nil, errInternal(resetErr, "房间 %d 状态复位失败", roomID)
		}
		return nil, errPrecondition("房间 %d 没有入住记录, 无法办理退房", roomID)
	}

	// 趁顾客还在住时关机, 在途计费段带着顾客归属落账
	if room.ACOn {
		if err := h.engine.PowerOff(roomID); err != nil {
			return nil, err
		}
	}

	t := h.clk.Now()
	if err := h.customers.CheckOut(customer.ID, t); err != nil {
		return nil, errInternal(err, "顾客 %d 退房写入失败", customer.ID)
	}
	if err := h.rooms.CheckOut(roomID); err != nil {
		return nil, errInternal(err, "房间 %d 退房写入失败", roomID)
	}

	checkinTime := t
	if customer.CheckinTime != nil {
		checkinTime = *customer.CheckinTime
	}
	details, err := h.details.GetDetailsForStay(roomID, customer.ID, checkinTime, t)
	if err != nil {
		return nil, errInternal(err, "查询房间 %d 入住详单失败", roomID)
	}

	bill, err := h.settleBill(room, customer, details, checkinTime, t)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Customer: CheckoutCustomer{
			Name:   customer.Name,
			IDCard: customer.IDCard,
			Phone:  customer.Phone,
		},
		Details: make([]CheckoutDetail, 0, len(details)),
		Bill: CheckoutBill{
			BillID:       bill.ID,
			RoomID:       bill.RoomID,
			CheckinTime:  bill.CheckinTime.Format("2006-01-02"),
			CheckoutTime: bill.CheckoutTime.Format("2006-01-02"),
			Duration:     formatStayDays(bill.StayDays),
			RoomFee:      bill.RoomFee,
			ACFee:        bill.ACFee,
			TotalAmount:  bill.TotalAmount,
		},
	}
	for _, d := range details {
		result.Details = append(result.Details, CheckoutDetail{
			RoomID:     d.RoomID,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			Duration:   d.ServeTime,
			FanSpeed:   d.FanSpeed,
			CurrentFee: d.Cost,
			Fee:        d.Cost,
		})
	}
	logger.Info("房间 %d 退房结账: 房费 %.2f 元, 空调费 %.2f 元, 合计 %.2f 元",
		roomID, bill.RoomFee, bill.ACFee, bill.TotalAmount)
	return result, nil
}

// settleBill 按入住窗口生成住宿账单.
// 房费 = 计费单位数 × 日费率; 周期计费开启时计费单位取
// 自然天数与关机周期数的较大者.
func (h *HotelService) settleBill(room *db.RoomInfo, customer *db.Customer, details []db.BillDetail, checkin, checkout time.Time) (*db.Bill, error) {
	stayDays := dateDiffDays(checkin, checkout)
	if stayDays < 1 {
		stayDays = 1
	}

	dailyRate := room.DailyRate
	if dailyRate <= 0 {
		dailyRate = h.cfg.RoomRate
	}

	chargeUnits := stayDays
	if h.cfg.EnableACCycleDailyFee {
		cycles := 0
		for _, d := range details {
			if d.Kind == types.DetailPowerOffCycle {
				cycles++
			}
		}
		if len(details) > 0 && cycles < 1 {
			cycles = 1
		}
		if cycles > chargeUnits {
			chargeUnits = cycles
		}
	}
	roomFee := float64(chargeUnits) * dailyRate

	var acFee float64
	for _, d := range details {
		if d.Kind != types.DetailRoomFee {
			acFee += d.Cost
		}
	}

	bill := &db.Bill{
		RoomID:       room.RoomID,
		CustomerID:   customer.ID,
		CheckinTime:  checkin,
		CheckoutTime: checkout,
		StayDays:     chargeUnits,
		RoomFee:      roomFee,
		ACFee:        acFee,
		TotalAmount:  roomFee + acFee,
		Status:       "UNPAID",
		CreatedAt:    checkout,
	}
	if err := h.bills.CreateBill(bill); err != nil {
		return nil, errInternal(err, "房间 %d 生成账单失败", room.RoomID)
	}
	return bill, nil
}

// GetBill 按账单号查询
func (h *HotelService) GetBill(billID int) (*db.Bill, error) {
	bill, err := h.bills.GetBillByID(billID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("账单 %d 不存在", billID)
		}
		return nil, errInternal(err, "查询账单 %d 失败", billID)
	}
	return bill, nil
}

// ListBills 查询账单, unpaidOnly 为真时只返回未结清的
func (h *HotelService) ListBills(unpaidOnly bool) ([]db.Bill, error) {
	var (
		bills []db.Bill
		err   error
	)
	if unpaidOnly {
		bills, err = h.bills.GetUnpaidBills()
	} else {
		bills, err = h.bills.GetAllBills()
	}
	if err != nil {
		return nil, errInternal(err, "查询账单列表失败")
	}
	return bills, nil
}

// ListBillsByRoom 查询某房间的历史账单
func (h *HotelService) ListBillsByRoom(roomID int) ([]db.Bill, error) {
	bills, err := h.bills.GetBillsByRoom(roomID)
	if err != nil {
		return nil, errInternal(err, "查询房间 %d 账单失败", roomID)
	}
	return bills, nil
}

// PayBill 结清账单. 已支付或已作废的账单会报前置条件错误.
func (h *HotelService) PayBill(billID int) error {
	if _, err := h.GetBill(billID); err != nil {
		return err
	}
	if err := h.bills.MarkPaid(billID, h.clk.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errPrecondition("账单 %d 不是未结清状态", billID)
		}
		return errInternal(err, "账单 %d 支付失败", billID)
	}
	return nil
}

// CancelBill 作废账单, 只有未结清的账单可以作废
func (h *HotelService) CancelBill(billID int) error {
	if _, err := h.GetBill(billID); err != nil {
		return err
	}
	if err := h.bills.MarkCancelled(billID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errPrecondition("账单 %d 不是未结清状态", billID)
		}
		return errInternal(err, "账单 %d 作废失败", billID)
	}
	return nil
}

// PrintableBill 可打印账单: 账单头, 逐条消费与汇总
type PrintableBill struct {
	Bill   *db.Bill            `json:"bill"`
	Items  []PrintableBillItem `json:"detailItems"`
	Totals PrintableBillTotals `json:"totals"`
}

type PrintableBillItem struct {
	StartTime time.Time   `json:"startTime"`
	EndTime   time.Time   `json:"endTime"`
	Duration  float64     `json:"duration"`
	FanSpeed  types.Speed `json:"fanSpeed"`
	Mode      types.Mode  `json:"mode"`
	Rate      float64     `json:"rate"`
	Cost      float64     `json:"cost"`
}

type PrintableBillTotals struct {
	ACDurationMinutes float64 `json:"acDurationMinutes"`
	ACFee             float64 `json:"acFee"`
	RoomFee           float64 `json:"roomFee"`
	GrandTotal        float64 `json:"grandTotal"`
}

// BuildPrintableBill 组装打印视图, 前台打印小票与导出 PDF 共用
func (h *HotelService) BuildPrintableBill(billID int) (*PrintableBill, error) {
	bill, err := h.GetBill(billID)
	if err != nil {
		return nil, err
	}
	details, err := h.details.GetDetailsForStay(bill.RoomID, bill.CustomerID, bill.CheckinTime, bill.CheckoutTime)
	if err != nil {
		return nil, errInternal(err, "查询账单 %d 详单失败", billID)
	}

	printable := &PrintableBill{
		Bill:  bill,
		Items: make([]PrintableBillItem, 0, len(details)),
		Totals: PrintableBillTotals{
			RoomFee:    bill.RoomFee,
			GrandTotal: bill.TotalAmount,
		},
	}
	for _, d := range details {
		printable.Items = append(printable.Items, PrintableBillItem{
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Duration:  d.ServeTime,
			FanSpeed:  d.FanSpeed,
			Mode:      d.ACMode,
			Rate:      d.Rate,
			Cost:      d.Cost,
		})
		printable.Totals.ACDurationMinutes += d.ServeTime
		printable.Totals.ACFee += d.Cost
	}
	return printable, nil
}

func (h *HotelService) getRoom(roomID int) (*db.RoomInfo, error) {
	room, err := h.rooms.GetRoomByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("房间 %d 不存在", roomID)
		}
		return nil, errInternal(err, "查询房间 %d 失败", roomID)
	}
	return room, nil
}

func dateDiffDays(from, to time.Time) int {
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(toDate.Sub(fromDate).Hours() / 24)
}

func formatStayDays(days int) string {
	return strconv.Itoa(days)
}
