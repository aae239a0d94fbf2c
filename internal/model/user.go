package model

import (
	"time"
)

// UserModel 用户模型
// 地址唯一，创建者和贡献者的外键都指向这里，缺失时按需创建
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Address string `json:"address" gorm:"uniqueIndex;not null"`
	Name    string `json:"name"`
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "user"
}
