// api/router_test.go

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/handlers"
	"hotelac/internal/logger"
	"hotelac/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetLevel(logger.ErrorLevel)
	os.Exit(m.Run())
}

type testServer struct {
	router   *gin.Engine
	services *service.Services
	clk      *clock.Clock
}

// newTestServer 组一套完整的 HTTP 栈: 临时库, 挂起时钟, 全部路由.
// 时间通过 /test 接口或 clk 拨动, 温度用管理端的模拟接口推进.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "hotel_api_test.db")))
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Default()
	engineCfg := cfg.Engine
	require.NoError(t, db.EnsureRooms(engineCfg.RoomCount, engineCfg.DefaultTemp, engineCfg.CoolingDefaultTarget))
	db.SeedBaseData()

	clk := clock.New(1)
	clk.Pause()
	services := service.NewServices(&engineCfg, clk)

	router := SetupRouter(
		handlers.NewAuthHandler(),
		handlers.NewACHandler(services.Engine),
		handlers.NewHotelHandler(services.Hotel),
		handlers.NewBillingHandler(services.Engine, services.Hotel),
		handlers.NewReportHandler(services.Stats, clk),
		handlers.NewMonitorHandler(services.Engine),
		handlers.NewAdminHandler(services.Engine),
		handlers.NewTestHandler(services.Engine, clk),
	)
	return &testServer{router: router, services: services, clk: clk}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// jumpAndTick 逻辑时间前进并推进一次温度与调度, 都走 HTTP 接口
func (s *testServer) jumpAndTick(t *testing.T, minutes float64) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/test/time/jump", gin.H{"add_minutes": minutes})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/admin/maintenance/simulate-temperature", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
	Err  string          `json:"err"`
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "响应不是合法 JSON: %s", w.Body.String())
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	decodeJSON(t, w, &env)
	return env
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		UserType string `json:"userType"`
	}
	decodeJSON(t, w, &login)
	assert.Equal(t, "administrator", login.UserType)

	w = ts.do(t, http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, 401, env.Code)
	assert.Equal(t, "用户名或密码错误", env.Msg)

	w = ts.do(t, http.MethodPost, "/auth/login", gin.H{"username": "admin"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", decodeEnvelope(t, w).Msg)
}

func TestACControlOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/ac/power", gin.H{"roomId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "空调开机成功", decodeEnvelope(t, w).Msg)

	w = ts.do(t, http.MethodPost, "/ac/speed", gin.H{"roomId": 1, "fanSpeed": "HIGH"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/ac/temp", gin.H{"roomId": 1, "targetTemp": 22})
	require.Equal(t, http.StatusOK, w.Code)

	// 高风 10 分钟正好从 32 降到 22, 到温暂停
	ts.jumpAndTick(t, 10)

	w = ts.do(t, http.MethodGet, "/ac/state?roomId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]interface{}
	decodeJSON(t, w, &state)
	assert.InDelta(t, 22.0, state["currentTemp"], 1e-6)
	assert.InDelta(t, 22.0, state["current_temp"], 1e-6, "新旧键名同时输出")
	assert.InDelta(t, 22.0, state["targetTemp"], 1e-6)
	assert.Equal(t, "PAUSED", state["queueState"])
	assert.Equal(t, "PAUSED", state["state"])
	assert.InDelta(t, 110.0, state["totalCost"], 1e-6, "总费用含单周期房费 100")
	assert.Nil(t, state["queuePosition"])

	w = ts.do(t, http.MethodPost, "/ac/power/off", gin.H{"roomId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "空调关机成功", decodeEnvelope(t, w).Msg)
}

func TestACValidationOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/ac/power", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", decodeEnvelope(t, w).Msg)

	w = ts.do(t, http.MethodPost, "/ac/power", gin.H{"roomId": 99})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Msg, "不存在")

	w = ts.do(t, http.MethodPost, "/ac/power", gin.H{"roomId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/ac/temp", gin.H{"roomId": 1, "targetTemp": 17})
	require.Equal(t, http.StatusBadRequest, w.Code, "制冷目标温度下限 18")

	w = ts.do(t, http.MethodPost, "/ac/speed", gin.H{"roomId": 2, "fanSpeed": "HIGH"})
	require.Equal(t, http.StatusBadRequest, w.Code, "未开机不能调风速")

	w = ts.do(t, http.MethodPost, "/ac/speed", gin.H{"roomId": 1, "fanSpeed": "TURBO"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/ac/state?roomId=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHotelEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/hotel/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []map[string]interface{}
	decodeJSON(t, w, &rooms)
	require.Len(t, rooms, 5)
	assert.EqualValues(t, 1, rooms[0]["RoomID"])

	w = ts.do(t, http.MethodPost, "/hotel/checkin", gin.H{"roomId": 1, "name": "张三"})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "入住成功", env.Msg)
	var checkin struct {
		RoomID     int `json:"roomId"`
		CustomerID int `json:"customerId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &checkin))
	assert.Equal(t, 1, checkin.RoomID)
	assert.NotZero(t, checkin.CustomerID)

	w = ts.do(t, http.MethodGet, "/hotel/rooms/available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ids []int
	decodeJSON(t, w, &ids)
	assert.Equal(t, []int{2, 3, 4, 5}, ids)

	// 路径参数退房, 返回裸结账单
	w = ts.do(t, http.MethodPost, "/hotel/checkout/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Customer struct {
			Name string `json:"name"`
		} `json:"customer"`
		Bill struct {
			TotalAmount float64 `json:"totalAmount"`
			Duration    string  `json:"duration"`
		} `json:"bill"`
	}
	decodeJSON(t, w, &result)
	assert.Equal(t, "张三", result.Customer.Name)
	assert.Equal(t, "1", result.Bill.Duration)
	assert.InDelta(t, 100.0, result.Bill.TotalAmount, 1e-6)

	w = ts.do(t, http.MethodPost, "/hotel/checkout", gin.H{"roomId": 2})
	require.Equal(t, http.StatusBadRequest, w.Code, "没有入住记录")

	w = ts.do(t, http.MethodPost, "/hotel/checkin", gin.H{"roomId": 1})
	require.Equal(t, http.StatusBadRequest, w.Code, "缺姓名")
}

func TestBillingEndpoints(t *testing.T) {
	ts := newTestServer(t)

	// 入住, 高风跑 5 分钟, 退房生成账单
	w := ts.do(t, http.MethodPost, "/hotel/checkin", gin.H{"roomId": 1, "name": "李四"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/ac/power", gin.H{"roomId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/ac/speed", gin.H{"roomId": 1, "fanSpeed": "HIGH"})
	require.Equal(t, http.StatusOK, w.Code)
	ts.jumpAndTick(t, 5)
	w = ts.do(t, http.MethodPost, "/hotel/checkout/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/billing/bills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bills []db.Bill
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &bills))
	require.Len(t, bills, 1)
	billID := bills[0].ID
	assert.Equal(t, "UNPAID", bills[0].Status)
	assert.InDelta(t, 105.0, bills[0].TotalAmount, 1e-6)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/billing/bills/%d", billID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bill db.Bill
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &bill))
	assert.InDelta(t, 5.0, bill.ACFee, 1e-6)

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/billing/bills/%d/pay", billID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "账单已结清", decodeEnvelope(t, w).Msg)
	w = ts.do(t, http.MethodPost, fmt.Sprintf("/billing/bills/%d/pay", billID), nil)
	require.Equal(t, http.StatusBadRequest, w.Code, "不能重复支付")

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/billing/bills/%d/print", billID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var printable struct {
		Items  []json.RawMessage `json:"detailItems"`
		Totals struct {
			GrandTotal float64 `json:"grandTotal"`
		} `json:"totals"`
	}
	decodeJSON(t, w, &printable)
	require.Len(t, printable.Items, 1)
	assert.InDelta(t, 105.0, printable.Totals.GrandTotal, 1e-6)

	// 房间 2 没用过空调, 费用视图只有房费 (价目 125)
	w = ts.do(t, http.MethodGet, "/billing/fee?roomId=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fee struct {
		RoomFee float64 `json:"roomFee"`
		ACFee   float64 `json:"acFee"`
		Total   float64 `json:"totalFee"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &fee))
	assert.InDelta(t, 125.0, fee.RoomFee, 1e-6)
	assert.Zero(t, fee.ACFee)

	w = ts.do(t, http.MethodGet, "/billing/details?roomId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details []db.BillDetail
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &details))
	assert.Len(t, details, 1)

	// 时间过滤必须成对
	path := "/billing/details?roomId=1&startTime=" + url.QueryEscape("2025-01-01 00:00:00")
	w = ts.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/billing/export/csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "\xEF\xBB\xBF"), "带 BOM 方便 Excel")
	assert.Contains(t, w.Body.String(), "房间号")

	w = ts.do(t, http.MethodGet, "/billing/bills/999", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t)

	// 固定到次日 01:00, 防止用例执行期间跨天
	now := ts.clk.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	ts.clk.JumpTo(dayStart.Add(25 * time.Hour))

	w := ts.do(t, http.MethodPost, "/ac/power", gin.H{"roomId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	ts.jumpAndTick(t, 1)
	w = ts.do(t, http.MethodPost, "/ac/power/off", gin.H{"roomId": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/report/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats []service.RoomUsageStat
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &stats))
	require.Len(t, stats, 5)
	assert.InDelta(t, 1.0/3.0, stats[0].TotalFee, 1e-6, "低风 1 分钟")
	assert.Equal(t, 1, stats[0].UsageCount)

	w = ts.do(t, http.MethodGet, "/report/weekly", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/report/daily?date=not-a-date", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/report/room/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []service.RoomReportRow
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &rows))
	assert.Len(t, rows, 1)

	w = ts.do(t, http.MethodGet, "/report/export?period=monthly", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/report/export?period=daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "开机周期数")
}

func TestMonitorEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for roomID := 1; roomID <= 4; roomID++ {
		w := ts.do(t, http.MethodPost, "/ac/power", gin.H{"roomId": roomID})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/monitor/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Capacity  int               `json:"capacity"`
		TimeSlice float64           `json:"timeSlice"`
		Serving   []json.RawMessage `json:"servingQueue"`
		Waiting   []json.RawMessage `json:"waitingQueue"`
	}
	decodeJSON(t, w, &status)
	assert.Equal(t, 3, status.Capacity)
	assert.InDelta(t, 120.0, status.TimeSlice, 1e-9)
	assert.Len(t, status.Serving, 3)
	assert.Len(t, status.Waiting, 1)

	w = ts.do(t, http.MethodGet, "/monitor/roomstatus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot []map[string]interface{}
	decodeJSON(t, w, &snapshot)
	require.Len(t, snapshot, 5)
	assert.Contains(t, snapshot[0], "roomId")
	assert.Contains(t, snapshot[0], "currentTemp")
	assert.Contains(t, snapshot[0], "acOn")

	w = ts.do(t, http.MethodGet, "/monitor/queuestatus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var queues struct {
		Serving []struct {
			RoomID      int    `json:"roomId"`
			ServingTime string `json:"servingTime"`
		} `json:"servingQueue"`
		Waiting []struct {
			RoomID      int    `json:"roomId"`
			WaitingTime string `json:"waitingTime"`
		} `json:"waitingQueue"`
	}
	decodeJSON(t, w, &queues)
	require.Len(t, queues.Serving, 3)
	_, err := time.Parse(time.RFC3339, queues.Serving[0].ServingTime)
	assert.NoError(t, err, "入队时刻按 RFC3339 输出")
	require.Len(t, queues.Waiting, 1)
	assert.Equal(t, 4, queues.Waiting[0].RoomID)
}

func TestAdminEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/admin/rooms/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var states []map[string]interface{}
	decodeJSON(t, w, &states)
	require.Len(t, states, 5)
	assert.Equal(t, false, states[0]["occupied"])
	assert.Contains(t, states[0], "daily_rate")
	assert.Contains(t, states[0], "dailyRate")

	// 关机状态也可以预设模式
	w = ts.do(t, http.MethodPost, "/admin/control/mode", gin.H{"roomId": 1, "mode": "HEATING"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/ac/state?roomId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]interface{}
	decodeJSON(t, w, &state)
	assert.Equal(t, "HEATING", state["mode"])
	assert.InDelta(t, 22.0, state["targetTemp"], 1e-6, "切模式回落到模式缺省目标")

	w = ts.do(t, http.MethodPost, "/admin/rooms/5/offline", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var offline struct {
		Room struct {
			RoomID int    `json:"RoomID"`
			Status string `json:"Status"`
		} `json:"room"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &offline))
	assert.Equal(t, 5, offline.Room.RoomID)
	assert.Equal(t, "MAINTENANCE", offline.Room.Status)

	w = ts.do(t, http.MethodPost, "/admin/rooms/5/online", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var online struct {
		Room struct {
			Status string `json:"Status"`
		} `json:"room"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &online))
	assert.Equal(t, "AVAILABLE", online.Room.Status)

	w = ts.do(t, http.MethodPost, "/admin/rooms/abc/offline", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/admin/maintenance/force-rotation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rotation struct {
		Message  string `json:"message"`
		Schedule struct {
			Capacity int `json:"capacity"`
		} `json:"schedule"`
	}
	decodeJSON(t, w, &rotation)
	assert.Equal(t, 3, rotation.Schedule.Capacity)
}

func TestTimeControlEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/test/time/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status clock.Status
	decodeJSON(t, w, &status)
	assert.InDelta(t, 1.0, status.Speed, 1e-9)
	assert.True(t, status.Paused)

	w = ts.do(t, http.MethodPost, "/test/time/set_speed", gin.H{"speed": 10})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/test/time/status", nil)
	decodeJSON(t, w, &status)
	assert.InDelta(t, 10.0, status.Speed, 1e-9)

	w = ts.do(t, http.MethodPost, "/test/time/set_speed", gin.H{"speed": -1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	before := ts.clk.Now()
	w = ts.do(t, http.MethodPost, "/test/time/jump", gin.H{"add_minutes": 10})
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 10*time.Minute.Seconds(), ts.clk.Now().Sub(before).Seconds(), 1e-6)

	w = ts.do(t, http.MethodPost, "/test/time/jump", gin.H{"add_minutes": -5})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/test/time/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/test/time/status", nil)
	decodeJSON(t, w, &status)
	assert.False(t, status.Paused)
	w = ts.do(t, http.MethodPost, "/test/time/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/test/initRoom", gin.H{"roomId": 1, "temperature": 30})
	require.Equal(t, http.StatusOK, w.Code)
	var reset struct {
		Message string `json:"message"`
	}
	decodeJSON(t, w, &reset)
	assert.Contains(t, reset.Message, "Room 1 reset")
	w = ts.do(t, http.MethodGet, "/ac/state?roomId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]interface{}
	decodeJSON(t, w, &state)
	assert.InDelta(t, 30.0, state["current_temp"], 1e-6)

	w = ts.do(t, http.MethodPost, "/test/initRoom", gin.H{"roomId": 99, "temperature": 30})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
