package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributeRecordModel 贡献记录
// TxHash 全局唯一，同一笔链上交易最多只产生一条记录
type ContributeRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId int64           `json:"project_id" gorm:"not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(36,18);not null"`
	Address   string          `json:"address" gorm:"not null"`
	TxHash    string          `json:"tx_hash" gorm:"uniqueIndex;not null"`
	BlockNum  int64           `json:"block_num"`
}

// TableName 自定义表名
func (ContributeRecordModel) TableName() string {
	return "contribute_record"
}
