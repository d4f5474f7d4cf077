// internal/db/ac_config.go

package db

import (
	"fmt"

	"gorm.io/gorm"
)

// ACModeConfig 每种模式的温度范围与缺省目标.
// 首次启动用配置值播种, 之后以表中数据为准, 改表即可调范围.
type ACModeConfig struct {
	Mode          string `gorm:"primaryKey;type:varchar(16)"` // COOLING/HEATING
	MinTemp       float64
	MaxTemp       float64
	DefaultTarget float64
}

type ACConfigRepository struct {
	db *gorm.DB
}

func NewACConfigRepository() *ACConfigRepository {
	return &ACConfigRepository{db: DB}
}

// GetAll 返回全部模式配置
func (r *ACConfigRepository) GetAll() ([]ACModeConfig, error) {
	var rows []ACModeConfig
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询空调模式配置失败: %w", err)
	}
	return rows, nil
}

// Seed 空表时写入缺省行, 已有数据不覆盖
func (r *ACConfigRepository) Seed(rows []ACModeConfig) error {
	var count int64
	if err := r.db.Model(&ACModeConfig{}).Count(&count).Error; err != nil {
		return fmt.Errorf("查询空调模式配置失败: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := r.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("播种空调模式配置失败: %w", err)
	}
	return nil
}
