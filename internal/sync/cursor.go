package sync

import (
	"errors"
	"fmt"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/logger"
	"github.com/blues/cfsync/internal/model"
	"gorm.io/gorm"
)

// CursorStore 同步游标存储
// 每个事件流持久化一条记录，进程重启后从上次应用到的区块继续
type CursorStore struct {
	db *gorm.DB
}

// NewCursorStore 创建游标存储
func NewCursorStore(db *gorm.DB) *CursorStore {
	return &CursorStore{db: db}
}

// Get 获取某事件流的游标，无记录时返回0
func (s *CursorStore) Get(stream chain.EventKind) (int64, error) {
	var cursor model.SyncCursorModel
	err := s.db.First(&cursor, "stream = ?", string(stream)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("获取同步游标失败: %w", err)
	}
	return cursor.LastBlock, nil
}

// Advance 单调推进游标
// 只在 block 大于当前值时更新，低于或等于当前值的观察不会让游标回退
func (s *CursorStore) Advance(stream chain.EventKind, block int64) (bool, error) {
	var cursor model.SyncCursorModel
	if err := s.db.Where("stream = ?", string(stream)).
		FirstOrCreate(&cursor, model.SyncCursorModel{Stream: string(stream)}).Error; err != nil {
		return false, fmt.Errorf("初始化同步游标失败: %w", err)
	}

	result := s.db.Model(&model.SyncCursorModel{}).
		Where("stream = ? AND last_block < ?", string(stream), block).
		Update("last_block", block)
	if result.Error != nil {
		return false, fmt.Errorf("推进同步游标失败: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		logger.Debug("Cursor for %s stream already at or beyond block %d", stream, block)
		return false, nil
	}
	return true, nil
}

// Reset 重置游标到指定区块
// 仅供运维操作使用，正常同步路径永远不回退游标
func (s *CursorStore) Reset(stream chain.EventKind, block int64) error {
	var cursor model.SyncCursorModel
	if err := s.db.Where("stream = ?", string(stream)).
		FirstOrCreate(&cursor, model.SyncCursorModel{Stream: string(stream)}).Error; err != nil {
		return fmt.Errorf("初始化同步游标失败: %w", err)
	}

	if err := s.db.Model(&model.SyncCursorModel{}).
		Where("stream = ?", string(stream)).
		Update("last_block", block).Error; err != nil {
		return fmt.Errorf("重置同步游标失败: %w", err)
	}

	logger.Warn("Cursor for %s stream reset to block %d by operator", stream, block)
	return nil
}

// All 获取所有流的游标
func (s *CursorStore) All() (map[string]int64, error) {
	cursors := make(map[string]int64, len(chain.StreamOrder))
	for _, stream := range chain.StreamOrder {
		block, err := s.Get(stream)
		if err != nil {
			return nil, err
		}
		cursors[string(stream)] = block
	}
	return cursors, nil
}
