package sync

import (
	"github.com/blues/cfsync/internal/model"
)

// ConflictResolver 链数据与库内数据不一致时的裁决策略：链上值为准。
// 数据库中链上来源的字段只由对账路径写入，这是系统唯一可能出现的
// 冲突形式。策略看似平凡，但显式存在：将来若引入第二个写入方，
// 优先级必须在这里裁决，而不是散落在各个读写点。
type ConflictResolver struct{}

// NewConflictResolver 创建冲突裁决器
func NewConflictResolver() *ConflictResolver {
	return &ConflictResolver{}
}

// ResolveStatus 裁决项目状态：返回链上一侧
func (r *ConflictResolver) ResolveStatus(chainValue, stored model.ProjectStatus) model.ProjectStatus {
	return chainValue
}
