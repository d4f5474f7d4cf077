// api/router.go

package api

import (
	"github.com/gin-gonic/gin"

	"hotelac/internal/handlers"
	"hotelac/middleware"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	acHandler *handlers.ACHandler,
	hotelHandler *handlers.HotelHandler,
	billingHandler *handlers.BillingHandler,
	reportHandler *handlers.ReportHandler,
	monitorHandler *handlers.MonitorHandler,
	adminHandler *handlers.AdminHandler,
	testHandler *handlers.TestHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.RequestLog())

	// 登录
	router.POST("/auth/login", authHandler.Login)

	// 顾客空调控制面板
	ac := router.Group("/ac")
	{
		ac.POST("/power", acHandler.PowerOn)
		ac.POST("/power/off", acHandler.PowerOff)
		ac.POST("/temp", acHandler.ChangeTemp)
		ac.POST("/speed", acHandler.ChangeSpeed)
		ac.POST("/mode", acHandler.ChangeMode)
		ac.GET("/state", acHandler.GetState)
	}

	// 前台
	hotel := router.Group("/hotel")
	{
		hotel.GET("/rooms", hotelHandler.GetAvailableRooms)
		hotel.GET("/rooms/available", hotelHandler.GetAvailableRoomIDs)
		hotel.POST("/checkin", hotelHandler.CheckIn)
		hotel.POST("/checkout", hotelHandler.CheckOut)
		hotel.POST("/checkout/:roomId", hotelHandler.CheckOut)
	}

	// 账务
	billing := router.Group("/billing")
	{
		billing.GET("/fee", billingHandler.GetCurrentFee)
		billing.GET("/details", billingHandler.GetDetails)
		billing.GET("/bills", billingHandler.ListBills)
		billing.GET("/bills/:billId", billingHandler.GetBill)
		billing.POST("/bills/:billId/pay", billingHandler.PayBill)
		billing.POST("/bills/:billId/cancel", billingHandler.CancelBill)
		billing.GET("/bills/:billId/print", billingHandler.GetPrintableBill)
		billing.GET("/bills/:billId/pdf", billingHandler.ExportBillPDF)
		billing.GET("/export/csv", billingHandler.ExportDetailsCSV)
	}

	// 报表
	report := router.Group("/report")
	{
		report.GET("/daily", reportHandler.GetDailyReport)
		report.GET("/weekly", reportHandler.GetWeeklyReport)
		report.GET("/room/:roomId", reportHandler.GetRoomReport)
		report.GET("/export", reportHandler.ExportReportCSV)
	}

	// 监控大屏
	monitor := router.Group("/monitor")
	{
		monitor.GET("/status", monitorHandler.GetScheduleStatus)
		monitor.GET("/roomstatus", monitorHandler.GetRoomStatus)
		monitor.GET("/queuestatus", monitorHandler.GetQueueStatus)
	}

	// 管理端
	admin := router.Group("/admin")
	{
		admin.GET("/rooms/status", adminHandler.ListRoomStatus)
		admin.POST("/control/mode", adminHandler.SetMode)
		admin.POST("/rooms/:roomId/offline", adminHandler.TakeRoomOffline)
		admin.POST("/rooms/:roomId/online", adminHandler.BringRoomOnline)
		admin.POST("/maintenance/force-rotation", adminHandler.ForceRotation)
		admin.POST("/maintenance/simulate-temperature", adminHandler.SimulateTemperature)
	}

	// 验收测试辅助
	test := router.Group("/test")
	{
		test.POST("/initRoom", testHandler.InitRoom)
		test.POST("/time/set_speed", testHandler.SetSpeed)
		test.POST("/time/jump", testHandler.Jump)
		test.POST("/time/pause", testHandler.Pause)
		test.POST("/time/resume", testHandler.Resume)
		test.GET("/time/status", testHandler.TimeStatus)
	}

	return router
}
