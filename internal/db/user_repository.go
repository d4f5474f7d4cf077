// internal/db/user_repository.go

package db

import (
	"fmt"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *UserRepository {
	return &UserRepository{db: DB}
}

// GetUserByUsername 按用户名查询账号
func (r *UserRepository) GetUserByUsername(username string) (*User, error) {
	var user User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户 %s 失败: %w", username, err)
	}
	return &user, nil
}
