package logic

import (
	"errors"
	"fmt"

	"github.com/blues/cfsync/internal/model"
	"gorm.io/gorm"
)

// UserLogic 用户业务逻辑
type UserLogic struct {
	db *gorm.DB
}

// NewUserLogic 创建用户业务逻辑
func NewUserLogic(db *gorm.DB) *UserLogic {
	return &UserLogic{db: db}
}

// EnsureUser 按地址获取用户，不存在时创建
// 创建者和贡献者的外键依赖该记录
func (u *UserLogic) EnsureUser(db *gorm.DB, address string) (*model.UserModel, error) {
	if address == "" {
		return nil, errors.New("用户地址不能为空")
	}
	if db == nil {
		db = u.db
	}

	var user model.UserModel
	if err := db.Where("address = ?", address).
		FirstOrCreate(&user, model.UserModel{Address: address}).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	return &user, nil
}

// GetByAddress 按地址获取用户
func (u *UserLogic) GetByAddress(address string) (*model.UserModel, error) {
	var user model.UserModel
	if err := u.db.Where("address = ?", address).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户不存在")
		}
		return nil, fmt.Errorf("获取用户失败: %w", err)
	}
	return &user, nil
}
