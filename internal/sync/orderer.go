package sync

import (
	"sort"

	"github.com/blues/cfsync/internal/chain"
)

// SortEvents 对一批事件做确定性排序
// 主键区块号升序，次键日志序号升序，两者都相同时保持到达顺序。
// 不修改入参，调用方依赖原批次做日志与诊断。
func SortEvents(events []chain.Event) []chain.Event {
	ordered := make([]chain.Event, len(events))
	copy(ordered, events)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].BlockNum != ordered[j].BlockNum {
			return ordered[i].BlockNum < ordered[j].BlockNum
		}
		return ordered[i].LogIndex < ordered[j].LogIndex
	})

	return ordered
}
