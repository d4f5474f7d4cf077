// internal/db/detail_repository.go

package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotelac/internal/logger"
	"hotelac/internal/types"
)

type DetailRepository struct {
	db *gorm.DB
}

func NewDetailRepository() *DetailRepository {
	return &DetailRepository{db: DB}
}

// CreateDetail 追加一条详单记录
func (r *DetailRepository) CreateDetail(detail *BillDetail) error {
	err := r.db.Create(detail).Error
	if err != nil {
		logger.Error("创建详单记录失败 - 房间ID: %d, 错误: %v", detail.RoomID, err)
		return fmt.Errorf("创建详单记录失败: %w", err)
	}
	logger.Debug("详单入账 - 房间ID: %d, 类型: %s, 变温: %.2f°C, 费用: %.2f元, 风速: %s",
		detail.RoomID, detail.Kind, detail.TempChange, detail.Cost, detail.FanSpeed)
	return nil
}

// GetDetailsByRoom 获取指定房间的全部详单, 按入账顺序返回
func (r *DetailRepository) GetDetailsByRoom(roomID int) ([]BillDetail, error) {
	var details []BillDetail
	err := r.db.Where("room_id = ?", roomID).Order("id ASC").Find(&details).Error
	if err != nil {
		logger.Error("获取房间详单失败 - 房间ID: %d, 错误: %v", roomID, err)
		return nil, fmt.Errorf("获取房间详单失败: %w", err)
	}
	return details, nil
}

// GetDetailsByRoomAndTimeRange 获取指定房间在时间范围内的详单
func (r *DetailRepository) GetDetailsByRoomAndTimeRange(roomID int, startTime, endTime time.Time) ([]BillDetail, error) {
	var details []BillDetail
	err := r.db.Where("room_id = ? AND start_time >= ? AND start_time <= ?",
		roomID, startTime, endTime).
		Order("id ASC").
		Find(&details).Error
	if err != nil {
		logger.Error("获取详单记录失败 - 房间ID: %d, 时间范围: %v 到 %v, 错误: %v",
			roomID, startTime.Format("2006-01-02 15:04:05"), endTime.Format("2006-01-02 15:04:05"), err)
		return nil, fmt.Errorf("获取详单记录失败: %w", err)
	}
	return details, nil
}

// GetDetailsByRoomDesc 获取指定房间的全部详单, 按开始时间倒序, 报表用
func (r *DetailRepository) GetDetailsByRoomDesc(roomID int) ([]BillDetail, error) {
	var details []BillDetail
	err := r.db.Where("room_id = ?", roomID).Order("start_time DESC").Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("获取房间详单失败: %w", err)
	}
	return details, nil
}

// GetDetailsByCustomer 获取指定顾客名下的详单
func (r *DetailRepository) GetDetailsByCustomer(customerID int) ([]BillDetail, error) {
	var details []BillDetail
	err := r.db.Where("customer_id = ?", customerID).Order("id ASC").Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("获取顾客详单失败: %w", err)
	}
	return details, nil
}

// GetDetailsForStay 获取某次入住的详单: 限定房间, 顾客和入住时间窗,
// 排除该顾客入住前由管理端开机产生的记录.
func (r *DetailRepository) GetDetailsForStay(roomID, customerID int, startTime, endTime time.Time) ([]BillDetail, error) {
	var details []BillDetail
	err := r.db.Where("room_id = ? AND customer_id = ? AND start_time >= ? AND start_time <= ?",
		roomID, customerID, startTime, endTime).
		Order("id ASC").
		Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("获取入住详单失败: %w", err)
	}
	return details, nil
}

// DeleteOrphanByRoom 删除房间里没有归属顾客的详单.
// 入住登记时清理管理端试机留下的记录.
func (r *DetailRepository) DeleteOrphanByRoom(roomID int) error {
	err := r.db.Where("room_id = ? AND customer_id IS NULL", roomID).Delete(&BillDetail{}).Error
	if err != nil {
		return fmt.Errorf("清理游离详单失败: %w", err)
	}
	return nil
}

// CountByKind 统计指定房间在时间范围内某类详单的条数
func (r *DetailRepository) CountByKind(roomID int, kind types.DetailKind, startTime, endTime time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&BillDetail{}).
		Where("room_id = ? AND kind = ? AND start_time >= ? AND start_time <= ?",
			roomID, kind, startTime, endTime).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计详单条数失败: %w", err)
	}
	return count, nil
}

// GetAllDetailsDesc 全量详单按开始时间倒序, 导出用
func (r *DetailRepository) GetAllDetailsDesc() ([]BillDetail, error) {
	var details []BillDetail
	err := r.db.Order("start_time DESC").Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("获取详单列表失败: %w", err)
	}
	return details, nil
}

// GetDetailsInRange 获取时间范围内所有房间的详单, 报表用
func (r *DetailRepository) GetDetailsInRange(startTime, endTime time.Time) ([]BillDetail, error) {
	var details []BillDetail
	err := r.db.Where("start_time >= ? AND start_time <= ?", startTime, endTime).
		Order("id ASC").
		Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("获取区间详单失败: %w", err)
	}
	return details, nil
}
