// internal/db/customer_repository.go

package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{db: DB}
}

// CreateCustomer 登记新顾客
func (r *CustomerRepository) CreateCustomer(customer *Customer) error {
	if err := r.db.Create(customer).Error; err != nil {
		return fmt.Errorf("登记顾客失败: %w", err)
	}
	return nil
}

// GetCustomerByID 按编号查询顾客
func (r *CustomerRepository) GetCustomerByID(id int) (*Customer, error) {
	var customer Customer
	err := r.db.Where("id = ?", id).First(&customer).Error
	if err != nil {
		return nil, fmt.Errorf("查询顾客 %d 失败: %w", id, err)
	}
	return &customer, nil
}

// GetCurrentByRoom 查询当前入住该房间的顾客
func (r *CustomerRepository) GetCurrentByRoom(roomID int) (*Customer, error) {
	var customer Customer
	err := r.db.Where("room_id = ? AND status = ?", roomID, "CHECKED_IN").
		Order("id DESC").
		First(&customer).Error
	if err != nil {
		return nil, fmt.Errorf("查询房间 %d 当前顾客失败: %w", roomID, err)
	}
	return &customer, nil
}

// CheckOut 顾客退房, 保留历史记录
func (r *CustomerRepository) CheckOut(customerID int, at time.Time) error {
	result := r.db.Model(&Customer{}).Where("id = ?", customerID).Updates(map[string]interface{}{
		"status":        "CHECKED_OUT",
		"checkout_time": at,
		"room_id":       nil,
	})
	if result.Error != nil {
		return fmt.Errorf("顾客退房失败: %w", result.Error)
	}
	return nil
}
