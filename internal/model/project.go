package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectModel 众筹项目模型
// Id 为链上分配的项目ID，非自增主键，由链上事件首次同步时写入
type ProjectModel struct {
	Id        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title string `json:"title" gorm:"not null"`

	// 众筹信息
	TargetAmount  decimal.Decimal `json:"target_amount" gorm:"type:decimal(36,18);not null"`
	CurrentAmount decimal.Decimal `json:"current_amount" gorm:"type:decimal(36,18);default:0"`

	// 时间信息
	Deadline time.Time `json:"deadline" gorm:"not null"`

	// 状态
	Status ProjectStatus `json:"status" gorm:"default:'active'"`

	// 创建者信息
	CreatorAddress string `json:"creator_address" gorm:"not null;index"`

	// 区块链信息
	TxHash   string `json:"tx_hash"`
	BlockNum int64  `json:"block_num"`
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"    // 进行中
	ProjectStatusFunded    ProjectStatus = "funded"    // 达成目标
	ProjectStatusExpired   ProjectStatus = "expired"   // 已到期未达成
	ProjectStatusWithdrawn ProjectStatus = "withdrawn" // 资金已提取
)

// IsTerminal 是否为终态，终态项目不允许回到 active
func (s ProjectStatus) IsTerminal() bool {
	switch s {
	case ProjectStatusFunded, ProjectStatusExpired, ProjectStatusWithdrawn:
		return true
	}
	return false
}

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "project"
}
