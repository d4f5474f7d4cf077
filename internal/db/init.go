// internal/db/init.go

package db

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hotelac/internal/logger"
	"hotelac/internal/types"
)

var (
	DB    *gorm.DB
	SQLDB *sql.DB
)

// Init 打开 sqlite 数据库并迁移表结构
func Init(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层连接失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	SQLDB = sqlDB

	if err := db.AutoMigrate(&RoomInfo{}, &BillDetail{}, &Customer{}, &Bill{}, &User{}, &ACModeConfig{}); err != nil {
		return fmt.Errorf("迁移数据库失败: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func Close() error {
	if SQLDB == nil {
		return nil
	}
	return SQLDB.Close()
}

// GetDB 返回全局 gorm 句柄
func GetDB() *gorm.DB {
	return DB
}

// SeedBaseData 初始化内置账号, 重复调用不产生重复数据
func SeedBaseData() {
	seedUser("admin", "admin123", "administrator")
	seedUser("manager", "manager123", "manager")
	seedUser("reception", "reception123", "reception")
}

func seedUser(username, password, identity string) {
	var count int64
	DB.Model(&User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return
	}
	if err := DB.Create(&User{Username: username, Password: password, Identity: identity}).Error; err != nil {
		logger.Error("创建内置账号 %s 失败: %v", username, err)
	}
}

// 缺省每日房费按房间号轮转, 与样例酒店的定价一致
var defaultDailyRates = []float64{100, 125, 150, 200, 100}

// EnsureRooms 初始化房间表, 缺哪间补哪间
func EnsureRooms(totalCount int, defaultTemp, defaultTarget float64) error {
	existing := make(map[int]bool)
	var ids []int
	if err := DB.Model(&RoomInfo{}).Pluck("room_id", &ids).Error; err != nil {
		return fmt.Errorf("查询房间列表失败: %w", err)
	}
	for _, id := range ids {
		existing[id] = true
	}

	for roomID := 1; roomID <= totalCount; roomID++ {
		if existing[roomID] {
			continue
		}
		room := RoomInfo{
			RoomID:      roomID,
			Status:      types.RoomAvailable,
			ACMode:      types.ModeCooling,
			FanSpeed:    types.SpeedLow,
			CurrentTemp: defaultTemp + 7,
			TargetTemp:  defaultTarget,
			DefaultTemp: defaultTemp,
			DailyRate:   defaultDailyRates[(roomID-1)%len(defaultDailyRates)],
		}
		if err := DB.Create(&room).Error; err != nil {
			logger.Error("创建房间 %d 失败: %v", roomID, err)
			return err
		}
		logger.Info("成功创建房间: %d", roomID)
	}
	return nil
}
