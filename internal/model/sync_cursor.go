package model

import (
	"time"
)

// SyncCursorModel 同步游标
// 每个事件流一条记录，LastBlock 为该流已完整应用的最高区块号，只增不减
type SyncCursorModel struct {
	Stream    string    `json:"stream" gorm:"primaryKey"`
	LastBlock int64     `json:"last_block" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 自定义表名
func (SyncCursorModel) TableName() string {
	return "sync_cursor"
}
