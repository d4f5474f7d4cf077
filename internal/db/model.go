// internal/db/model.go

package db

import (
	"time"

	"hotelac/internal/types"
)

// RoomInfo 房间信息表.
//
// 调度相关的可空列 (serving_start / waiting_start / billing_start_temp /
// last_temp_update / pause_start_temp) 用指针表达 NULL, 由引擎按列原子更新,
// 禁止整行回写.
type RoomInfo struct {
	RoomID       int              `gorm:"primaryKey"`
	Status       types.RoomStatus `gorm:"type:varchar(20)"`
	CustomerID   *int
	CustomerName string `gorm:"type:varchar(255)"`
	CheckinTime  *time.Time

	ACOn        bool
	ACMode      types.Mode  `gorm:"type:varchar(20)"`
	FanSpeed    types.Speed `gorm:"type:varchar(20)"`
	CurrentTemp float64
	TargetTemp  float64
	DefaultTemp float64
	DailyRate   float64

	ACSessionStart   *time.Time
	ServingStart     *time.Time
	WaitingStart     *time.Time
	BillingStartTemp *float64
	LastTempUpdate   *time.Time
	CoolingPaused    bool
	PauseStartTemp   *float64
}

// BillDetail 计费详单表, 只追加不修改
type BillDetail struct {
	ID         int `gorm:"primaryKey"`
	RoomID     int `gorm:"index"`
	CustomerID *int
	Kind       types.DetailKind `gorm:"type:varchar(20);index"`
	ACMode     types.Mode       `gorm:"type:varchar(20)"`
	FanSpeed   types.Speed      `gorm:"type:varchar(20)"`
	StartTime  time.Time
	EndTime    time.Time
	ServeTime  float64 // 服务时长 (逻辑分钟), 仅用于展示
	Rate       float64
	TempChange float64 // 有效变温量 (摄氏度)
	Cost       float64
}

// Customer 顾客表
type Customer struct {
	ID           int    `gorm:"primaryKey"`
	Name         string `gorm:"type:varchar(255)"`
	IDCard       string `gorm:"type:varchar(32)"`
	Phone        string `gorm:"type:varchar(32)"`
	RoomID       *int
	CheckinTime  *time.Time
	CheckoutTime *time.Time
	Status       string `gorm:"type:varchar(20)"` // CHECKED_IN / CHECKED_OUT
}

// Bill 住宿账单表, 退房时生成
type Bill struct {
	ID           int `gorm:"primaryKey"`
	RoomID       int
	CustomerID   int
	CheckinTime  time.Time
	CheckoutTime time.Time
	StayDays     int // 计费单位数, 开启周期计费时可能大于自然天数
	RoomFee      float64
	ACFee        float64
	TotalAmount  float64
	Status       string `gorm:"type:varchar(20)"` // UNPAID / PAID / CANCELLED
	PaidTime     *time.Time
	CreatedAt    time.Time
}

// User 用户表
type User struct {
	Username string `gorm:"primaryKey;type:varchar(255)"`
	Password string `gorm:"type:varchar(255)"`
	Identity string `gorm:"type:varchar(255)"`
}
