package logic

import (
	"fmt"

	"github.com/blues/cfsync/internal/model"
	"gorm.io/gorm"
)

// EventLogic 事件审计记录业务逻辑
type EventLogic struct {
	db *gorm.DB
}

// NewEventLogic 创建事件业务逻辑
func NewEventLogic(db *gorm.DB) *EventLogic {
	return &EventLogic{db: db}
}

// CreateIfAbsent 按 (tx_hash, log_index) 幂等创建事件审计记录
func (e *EventLogic) CreateIfAbsent(db *gorm.DB, event *model.EventModel) (bool, error) {
	if db == nil {
		db = e.db
	}

	var count int64
	if err := db.Model(&model.EventModel{}).
		Where("tx_hash = ? AND log_index = ?", event.TxHash, event.LogIndex).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("检查事件是否存在失败: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := db.Create(event).Error; err != nil {
		return false, fmt.Errorf("创建事件记录失败: %w", err)
	}

	return true, nil
}

// MarkProcessed 标记事件已处理
func (e *EventLogic) MarkProcessed(db *gorm.DB, txHash string, logIndex int64) error {
	if db == nil {
		db = e.db
	}

	if err := db.Model(&model.EventModel{}).
		Where("tx_hash = ? AND log_index = ?", txHash, logIndex).
		Update("processed", true).Error; err != nil {
		return fmt.Errorf("更新事件处理状态失败: %w", err)
	}
	return nil
}

// GetUnprocessedEvents 获取未处理的事件
func (e *EventLogic) GetUnprocessedEvents(limit int) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("processed = ?", false).
		Order("block_num ASC, log_index ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取未处理事件失败: %w", err)
	}
	return events, nil
}
