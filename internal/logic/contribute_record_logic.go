package logic

import (
	"errors"
	"fmt"

	"github.com/blues/cfsync/internal/model"
	"gorm.io/gorm"
)

// ContributeRecordLogic 贡献记录业务逻辑
type ContributeRecordLogic struct {
	db *gorm.DB
}

// NewContributeRecordLogic 创建贡献记录业务逻辑
func NewContributeRecordLogic(db *gorm.DB) *ContributeRecordLogic {
	return &ContributeRecordLogic{db: db}
}

// CreateIfAbsent 按交易哈希幂等创建贡献记录
// 已存在时不做任何写入，返回 inserted=false
// 不在这里累加项目金额，汇总由数据库触发器维护
func (c *ContributeRecordLogic) CreateIfAbsent(db *gorm.DB, record *model.ContributeRecordModel) (bool, error) {
	if err := c.validateContributeRecord(record); err != nil {
		return false, err
	}
	if db == nil {
		db = c.db
	}

	var count int64
	if err := db.Model(&model.ContributeRecordModel{}).
		Where("tx_hash = ?", record.TxHash).Count(&count).Error; err != nil {
		return false, fmt.Errorf("检查贡献记录是否存在失败: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := db.Create(record).Error; err != nil {
		return false, fmt.Errorf("创建贡献记录失败: %w", err)
	}

	return true, nil
}

// GetByTxHash 按交易哈希获取贡献记录
func (c *ContributeRecordLogic) GetByTxHash(txHash string) (*model.ContributeRecordModel, error) {
	var record model.ContributeRecordModel
	if err := c.db.Where("tx_hash = ?", txHash).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("贡献记录不存在")
		}
		return nil, fmt.Errorf("获取贡献记录失败: %w", err)
	}
	return &record, nil
}

// GetProjectContributeRecords 获取项目贡献记录
func (c *ContributeRecordLogic) GetProjectContributeRecords(projectId int64, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	var records []model.ContributeRecordModel
	var total int64

	if err := c.db.Model(&model.ContributeRecordModel{}).
		Where("project_id = ?", projectId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取贡献记录总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := c.db.Where("project_id = ?", projectId).
		Offset(offset).
		Limit(pageSize).
		Order("block_num DESC").
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取贡献记录列表失败: %w", err)
	}

	return records, total, nil
}

// validateContributeRecord 验证贡献数据
func (c *ContributeRecordLogic) validateContributeRecord(record *model.ContributeRecordModel) error {
	if record.ProjectId == 0 {
		return errors.New("项目ID不能为空")
	}
	if !record.Amount.IsPositive() {
		return errors.New("贡献金额必须大于0")
	}
	if record.Address == "" {
		return errors.New("贡献者地址不能为空")
	}
	if record.TxHash == "" {
		return errors.New("交易哈希不能为空")
	}
	return nil
}
