// internal/service/ac_service.go

package service

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/logger"
	"hotelac/internal/types"
)

// ACService 中央空调控制引擎.
//
// 一把互斥锁串行化全部命令与 tick: 双队列, 房间行的引擎字段,
// 详单追加都只在锁内读写. 房间状态的多字段不变量依赖这种全序,
// 不做更细粒度的锁.
type ACService struct {
	mu        sync.Mutex
	cfg       *config.EngineConfig
	clk       *clock.Clock
	rooms     *db.RoomRepository
	details   *db.DetailRepository
	customers *db.CustomerRepository
	queues    *scheduleQueues

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewACService 创建温控引擎
func NewACService(cfg *config.EngineConfig, clk *clock.Clock) *ACService {
	return &ACService{
		cfg:       cfg,
		clk:       clk,
		rooms:     db.NewRoomRepository(),
		details:   db.NewDetailRepository(),
		customers: db.NewCustomerRepository(),
		queues:    newScheduleQueues(cfg.ACTotalCount),
	}
}

// Clock 返回引擎使用的逻辑时钟
func (s *ACService) Clock() *clock.Clock {
	return s.clk
}

func (s *ACService) getRoomLocked(roomID int) (*db.RoomInfo, error) {
	room, err := s.rooms.GetRoomByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("房间 %d 不存在", roomID)
		}
		return nil, errInternal(err, "查询房间 %d 失败", roomID)
	}
	return room, nil
}

// stepRoomLocked 推进房间温度到时刻 t 并落库.
// 首次调用 (last_temp_update 为空) 只记录时间戳, 不变温.
func (s *ACService) stepRoomLocked(room *db.RoomInfo, isServing, force bool, t time.Time) (TempSignal, error) {
	var elapsed time.Duration
	if room.LastTempUpdate != nil {
		elapsed = t.Sub(*room.LastTempUpdate)
		if elapsed < 0 {
			elapsed = 0
		}
	}
	newTemp, sig := thermalStep(room, isServing, elapsed, s.cfg, force)
	room.CurrentTemp = newTemp
	ts := t
	room.LastTempUpdate = &ts
	if err := s.rooms.UpdateCurrentTemp(room.RoomID, newTemp, t); err != nil {
		return SignalNone, errInternal(err, "写入房间 %d 温度失败", room.RoomID)
	}
	return sig, nil
}

// PowerOn 开机. 已开机时返回 alreadyOn=true 的无操作结果, 不重复计房费.
func (s *ACService) PowerOn(roomID int, currentTemp *float64) (alreadyOn bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return false, err
	}
	if room.ACOn {
		logger.Debug("房间 %d 已处于开机状态, 忽略重复开机", roomID)
		return true, nil
	}

	if err := s.rooms.PowerOn(roomID, t, currentTemp); err != nil {
		return false, errInternal(err, "房间 %d 开机写入失败", roomID)
	}
	if currentTemp != nil {
		room.CurrentTemp = *currentTemp
	}
	ts := t
	room.ACOn = true
	room.ACSessionStart = &ts
	room.LastTempUpdate = &ts
	room.CoolingPaused = false
	room.PauseStartTemp = nil

	if s.cfg.EnableACCycleDailyFee && room.DailyRate > 0 {
		if err := s.appendRoomFeeLocked(room, t); err != nil {
			return false, err
		}
	}

	if err := s.placeRoomLocked(room, t); err != nil {
		return false, err
	}
	if err := s.schedulePassLocked(t); err != nil {
		return false, err
	}
	logger.Info("房间 %d 开机: 模式 %s, 风速 %s, 当前 %.1f°C, 目标 %.1f°C",
		roomID, room.ACMode, room.FanSpeed, room.CurrentTemp, room.TargetTemp)
	return false, nil
}

// PowerOff 关机. 结算在途计费段后把房间重置回缺省状态并冻结温度.
func (s *ACService) PowerOff(roomID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return err
	}
	if !room.ACOn {
		return errPrecondition("房间 %d 空调未开机", roomID)
	}

	isServing := s.queues.isServing(roomID)
	if _, err := s.stepRoomLocked(room, isServing, true, t); err != nil {
		return err
	}
	if err := s.settleSegmentLocked(room, t, reasonPowerOff); err != nil {
		return err
	}

	s.queues.remove(roomID)
	if err := s.rooms.PowerOff(roomID, s.cfg.DefaultTarget(room.ACMode), room.DefaultTemp); err != nil {
		return errInternal(err, "房间 %d 关机写入失败", roomID)
	}
	if err := s.schedulePassLocked(t); err != nil {
		return err
	}
	logger.Info("房间 %d 关机, 温度重置为 %.1f°C", roomID, room.DefaultTemp)
	return nil
}

// ChangeTemp 调整目标温度. 超出模式范围时状态不变, 返回 OutOfRange.
func (s *ACService) ChangeTemp(roomID int, target float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return err
	}
	if !room.ACOn {
		return errPrecondition("房间 %d 空调未开机", roomID)
	}

	rng := s.cfg.TempRange(room.ACMode)
	if !rng.Contains(target) {
		return errOutOfRange("目标温度 %.1f°C 超出 %s 模式范围 [%.1f, %.1f], 维持当前目标 %.1f°C",
			target, room.ACMode, rng.Min, rng.Max, room.TargetTemp)
	}

	if err := s.rooms.UpdateTargetTemp(roomID, target); err != nil {
		return errInternal(err, "房间 %d 目标温度写入失败", roomID)
	}
	room.TargetTemp = target
	if e := s.queues.find(roomID); e != nil {
		e.targetTemp = target
	}

	if room.CoolingPaused {
		if err := s.resumeFromPauseLocked(room, t); err != nil {
			return err
		}
	}
	if err := s.schedulePassLocked(t); err != nil {
		return err
	}
	logger.Info("房间 %d 目标温度调整为 %.1f°C", roomID, target)
	return nil
}

// ChangeSpeed 调整风速. 风速未变化时为无操作;
// 服务中的房间先按旧风速结算当前计费段再重新锚定.
func (s *ACService) ChangeSpeed(roomID int, fan string) error {
	speed, ok := types.ParseSpeed(fan)
	if !ok {
		return errInvalidArgument("未知风速: %s", fan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return err
	}
	if !room.ACOn {
		return errPrecondition("房间 %d 空调未开机", roomID)
	}
	if speed == room.FanSpeed {
		logger.Debug("房间 %d 风速未变化 (%s), 忽略", roomID, speed)
		return nil
	}

	if room.ServingStart != nil {
		if err := s.settleAndReanchorLocked(room, t, reasonSpeedChange); err != nil {
			return err
		}
	}

	if err := s.rooms.UpdateSpeed(roomID, speed); err != nil {
		return errInternal(err, "房间 %d 风速写入失败", roomID)
	}
	room.FanSpeed = speed

	if err := s.reconcileMembershipLocked(room, t); err != nil {
		return err
	}
	if err := s.schedulePassLocked(t); err != nil {
		return err
	}
	logger.Info("房间 %d 风速调整为 %s", roomID, speed)
	return nil
}

// ChangeMode 切换工作模式并把目标温度重置为该模式缺省值.
// 允许在关机状态下调用, 前台用它在开机前预设模式.
func (s *ACService) ChangeMode(roomID int, modeStr string) error {
	mode, ok := types.ParseMode(modeStr)
	if !ok {
		return errInvalidArgument("未知工作模式: %s", modeStr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return err
	}
	if mode == room.ACMode {
		logger.Debug("房间 %d 模式未变化 (%s), 忽略", roomID, mode)
		return nil
	}

	if room.ACOn && room.ServingStart != nil {
		if err := s.settleAndReanchorLocked(room, t, reasonModeChange); err != nil {
			return err
		}
	}

	target := s.cfg.DefaultTarget(mode)
	if err := s.rooms.UpdateMode(roomID, mode, target); err != nil {
		return errInternal(err, "房间 %d 模式写入失败", roomID)
	}
	room.ACMode = mode
	room.TargetTemp = target

	if room.ACOn {
		if room.CoolingPaused {
			// 模式变化改变送风方向, 挂起房间重新进入调度
			if err := s.resumeFromPauseLocked(room, t); err != nil {
				return err
			}
		} else if err := s.reconcileMembershipLocked(room, t); err != nil {
			return err
		}
		if err := s.schedulePassLocked(t); err != nil {
			return err
		}
	}
	logger.Info("房间 %d 切换为 %s 模式, 目标温度 %.1f°C", roomID, mode, target)
	return nil
}

// settleAndReanchorLocked 服务中途变更风速/模式时的结算流程:
// 推进温度, 按旧参数结算, 然后以当前温度为新锚点开启新计费段.
func (s *ACService) settleAndReanchorLocked(room *db.RoomInfo, t time.Time, reason settleReason) error {
	if _, err := s.stepRoomLocked(room, true, true, t); err != nil {
		return err
	}
	if err := s.settleSegmentLocked(room, t, reason); err != nil {
		return err
	}
	if err := s.rooms.ReanchorServing(room.RoomID, t, room.CurrentTemp); err != nil {
		return errInternal(err, "房间 %d 重新锚定失败", room.RoomID)
	}
	ts := t
	anchor := room.CurrentTemp
	room.ServingStart = &ts
	room.BillingStartTemp = &anchor
	return nil
}

// resumeFromPauseLocked 清除挂起标记并让房间重新排队
func (s *ACService) resumeFromPauseLocked(room *db.RoomInfo, t time.Time) error {
	if err := s.rooms.ClearPause(room.RoomID); err != nil {
		return errInternal(err, "房间 %d 清除挂起标记失败", room.RoomID)
	}
	room.CoolingPaused = false
	room.PauseStartTemp = nil
	return s.placeRoomLocked(room, t)
}

// RoomState 房间状态快照, RequestState 的返回值
type RoomState struct {
	RoomID      int
	Occupied    bool
	ACOn        bool
	Mode        types.Mode
	FanSpeed    types.Speed
	CurrentTemp float64
	TargetTemp  float64
	DefaultTemp float64
	DailyRate   float64
	QueueState  types.QueueState
	ServingSec  float64
	WaitingSec  float64
	QueuePos    int // 等待队列中的序位 (1 起), 其余状态为 0
	CurrentCost float64 // 在途计费段的未落账空调费
	TotalCost   float64 // 房费 + 空调费, 与费用查询视图同口径
}

// RequestState 只读查询房间快照与费用, 不推进任何状态
func (s *ACService) RequestState(roomID int) (*RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	room, err := s.getRoomLocked(roomID)
	if err != nil {
		return nil, err
	}
	return s.roomStateLocked(room, t)
}

// ListRoomStatus 返回全部房间快照, 管理端大屏用
func (s *ACService) ListRoomStatus() ([]*RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	rooms, err := s.rooms.GetAllRooms()
	if err != nil {
		return nil, errInternal(err, "获取房间列表失败")
	}
	states := make([]*RoomState, 0, len(rooms))
	for i := range rooms {
		st, err := s.roomStateLocked(&rooms[i], t)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}

func (s *ACService) roomStateLocked(room *db.RoomInfo, t time.Time) (*RoomState, error) {
	state := &RoomState{
		RoomID:      room.RoomID,
		Occupied:    room.Status == types.RoomOccupied,
		ACOn:        room.ACOn,
		Mode:        room.ACMode,
		FanSpeed:    room.FanSpeed,
		CurrentTemp: room.CurrentTemp,
		TargetTemp:  room.TargetTemp,
		DefaultTemp: room.DefaultTemp,
		DailyRate:   room.DailyRate,
		QueueState:  types.QueueIdle,
	}

	switch {
	case room.CoolingPaused:
		state.QueueState = types.QueuePaused
	case s.queues.isServing(room.RoomID):
		e := s.queues.findServing(room.RoomID)
		state.QueueState = types.QueueServing
		state.ServingSec = t.Sub(e.servingSince).Seconds()
	default:
		for i, e := range s.queues.sortedWaiting() {
			if e.roomID == room.RoomID {
				state.QueueState = types.QueueWaiting
				state.WaitingSec = t.Sub(e.waitingSince).Seconds()
				state.QueuePos = i + 1
				break
			}
		}
	}

	fee, err := s.feeDetailLocked(room)
	if err != nil {
		return nil, err
	}
	state.CurrentCost = s.pendingFeeLocked(room)
	state.TotalCost = fee.Total
	return state, nil
}

// QueueItemStatus 监控端看到的队列成员
type QueueItemStatus struct {
	RoomID     int         `json:"roomId"`
	FanSpeed   types.Speed `json:"fanSpeed"`
	Mode       types.Mode  `json:"mode"`
	TargetTemp float64     `json:"targetTemp"`
	ServingSec float64     `json:"servingSeconds"`
	WaitingSec float64     `json:"waitingSeconds"`
	TotalSec   float64     `json:"totalSeconds"`

	// 入队时刻, 旧版监控端单独使用
	ServingSince *time.Time `json:"-"`
	WaitingSince *time.Time `json:"-"`
}

// ScheduleStatus 调度器全局状态
type ScheduleStatus struct {
	Capacity  int               `json:"capacity"`
	TimeSlice float64           `json:"timeSlice"`
	Serving   []QueueItemStatus `json:"servingQueue"`
	Waiting   []QueueItemStatus `json:"waitingQueue"`
}

// GetScheduleStatus 返回容量, 时间片与两个队列的快照
func (s *ACService) GetScheduleStatus() (*ScheduleStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clk.Now()

	status := &ScheduleStatus{
		Capacity:  s.queues.capacity,
		TimeSlice: s.cfg.TimeSliceSeconds,
		Serving:   make([]QueueItemStatus, 0, len(s.queues.serving)),
		Waiting:   make([]QueueItemStatus, 0, len(s.queues.waiting)),
	}
	for _, e := range s.queues.serving {
		status.Serving = append(status.Serving, s.queueItemLocked(e, t, true))
	}
	for _, e := range s.queues.sortedWaiting() {
		status.Waiting = append(status.Waiting, s.queueItemLocked(e, t, false))
	}
	return status, nil
}

// InitRoomForTest 测试接口: 直接改写房间温度与费率.
// 不触碰队列与计费锚点, 测试脚本在用例开始前布置初始温度用.
func (s *ACService) InitRoomForTest(roomID int, temperature, defaultTemp, dailyRate *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getRoomLocked(roomID); err != nil {
		return err
	}
	if err := s.rooms.ResetForTest(roomID, temperature, defaultTemp, dailyRate); err != nil {
		return errInternal(err, "房间 %d 测试重置失败", roomID)
	}
	if temperature != nil {
		logger.Info("房间 %d 测试重置: 温度 %.1f°C", roomID, *temperature)
	}
	return nil
}

func (s *ACService) queueItemLocked(e *queueEntry, t time.Time, serving bool) QueueItemStatus {
	item := QueueItemStatus{
		RoomID:     e.roomID,
		FanSpeed:   e.fanSpeed,
		Mode:       e.mode,
		TargetTemp: e.targetTemp,
	}
	if serving {
		since := e.servingSince
		item.ServingSince = &since
		item.ServingSec = t.Sub(since).Seconds()
	} else {
		since := e.waitingSince
		item.WaitingSince = &since
		item.WaitingSec = t.Sub(since).Seconds()
	}

	// 累计服务时长 = 当前片段 + 本次开机以来已结算的服务分钟数
	item.TotalSec = item.ServingSec
	room, err := s.rooms.GetRoomByID(e.roomID)
	if err != nil || room.ACSessionStart == nil {
		return item
	}
	details, err := s.details.GetDetailsByRoomAndTimeRange(e.roomID, *room.ACSessionStart, t)
	if err != nil {
		return item
	}
	for _, d := range details {
		if d.Kind == types.DetailAC {
			item.TotalSec += d.ServeTime * 60
		}
	}
	return item
}
