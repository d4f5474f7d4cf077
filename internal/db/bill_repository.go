// internal/db/bill_repository.go

package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository() *BillRepository {
	return &BillRepository{db: DB}
}

// CreateBill 生成住宿账单
func (r *BillRepository) CreateBill(bill *Bill) error {
	if err := r.db.Create(bill).Error; err != nil {
		return fmt.Errorf("生成账单失败: %w", err)
	}
	return nil
}

// GetBillByID 按账单号查询
func (r *BillRepository) GetBillByID(billID int) (*Bill, error) {
	var bill Bill
	err := r.db.Where("id = ?", billID).First(&bill).Error
	if err != nil {
		return nil, fmt.Errorf("查询账单 %d 失败: %w", billID, err)
	}
	return &bill, nil
}

// GetBillsByRoom 查询某房间的历史账单
func (r *BillRepository) GetBillsByRoom(roomID int) ([]Bill, error) {
	var bills []Bill
	err := r.db.Where("room_id = ?", roomID).Order("id DESC").Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("查询房间 %d 账单失败: %w", roomID, err)
	}
	return bills, nil
}

// GetBillsByCustomer 查询某顾客名下的账单
func (r *BillRepository) GetBillsByCustomer(customerID int) ([]Bill, error) {
	var bills []Bill
	err := r.db.Where("customer_id = ?", customerID).Order("id DESC").Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("查询顾客 %d 账单失败: %w", customerID, err)
	}
	return bills, nil
}

// GetAllBills 查询全部账单
func (r *BillRepository) GetAllBills() ([]Bill, error) {
	var bills []Bill
	err := r.db.Order("id DESC").Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("查询账单列表失败: %w", err)
	}
	return bills, nil
}

// GetUnpaidBills 查询全部未结清账单
func (r *BillRepository) GetUnpaidBills() ([]Bill, error) {
	var bills []Bill
	err := r.db.Where("status = ?", "UNPAID").Order("id DESC").Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("查询未结清账单失败: %w", err)
	}
	return bills, nil
}

// MarkPaid 账单结清. 已支付或已取消的账单不允许重复操作.
func (r *BillRepository) MarkPaid(billID int, at time.Time) error {
	result := r.db.Model(&Bill{}).
		Where("id = ? AND status = ?", billID, "UNPAID").
		Updates(map[string]interface{}{
			"status":    "PAID",
			"paid_time": at,
		})
	if result.Error != nil {
		return fmt.Errorf("更新账单状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("更新账单状态失败: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// MarkCancelled 作废账单, 只有未结清的账单可以作废
func (r *BillRepository) MarkCancelled(billID int) error {
	result := r.db.Model(&Bill{}).
		Where("id = ? AND status = ?", billID, "UNPAID").
		Update("status", "CANCELLED")
	if result.Error != nil {
		return fmt.Errorf("作废账单失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("作废账单失败: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
