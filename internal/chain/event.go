package chain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind 事件类型
type EventKind string

const (
	EventProjectCreated   EventKind = "ProjectCreated"   // 项目创建
	EventContributionMade EventKind = "ContributionMade" // 贡献
	EventFundsWithdrawn   EventKind = "FundsWithdrawn"   // 资金提取
	EventRefundProcessed  EventKind = "RefundProcessed"  // 退款
)

// StreamOrder 事件流的固定同步顺序
// 后面的流依赖前面的流已经应用（贡献依赖项目已创建）
var StreamOrder = []EventKind{
	EventProjectCreated,
	EventContributionMade,
	EventFundsWithdrawn,
	EventRefundProcessed,
}

// Event 链上事件
// Data 为已经过 NormalizeEventData 归一化的载荷
type Event struct {
	Kind      EventKind              `json:"kind"`
	TxHash    string                 `json:"tx_hash"`
	TxIndex   int64                  `json:"tx_index"`
	LogIndex  int64                  `json:"log_index"`
	BlockNum  int64                  `json:"block_num"`
	BlockTime time.Time              `json:"block_time"`
	Data      map[string]interface{} `json:"data"`
}

// DataString 读取字符串字段
func (e Event) DataString(key string) (string, error) {
	v, ok := e.Data[key]
	if !ok {
		return "", fmt.Errorf("event %s missing field %q", e.Kind, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("event %s field %q is not a string: %T", e.Kind, key, v)
	}
	return s, nil
}

// DataInt64 读取整型字段
func (e Event) DataInt64(key string) (int64, error) {
	v, ok := e.Data[key]
	if !ok {
		return 0, fmt.Errorf("event %s missing field %q", e.Kind, key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case *big.Int:
		return n.Int64(), nil
	default:
		return 0, fmt.Errorf("event %s field %q is not an integer: %T", e.Kind, key, v)
	}
}

// DataAmount 读取金额字段
// 链上金额为 uint256，按最小单位原样入库，换算交给展示层
func (e Event) DataAmount(key string) (decimal.Decimal, error) {
	v, ok := e.Data[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("event %s missing field %q", e.Kind, key)
	}
	switch a := v.(type) {
	case *big.Int:
		return decimal.NewFromBigInt(a, 0), nil
	case decimal.Decimal:
		return a, nil
	case string:
		d, err := decimal.NewFromString(a)
		if err != nil {
			return decimal.Zero, fmt.Errorf("event %s field %q: %w", e.Kind, key, err)
		}
		return d, nil
	case int64:
		return decimal.NewFromInt(a), nil
	case float64:
		return decimal.NewFromFloat(a), nil
	default:
		return decimal.Zero, fmt.Errorf("event %s field %q is not an amount: %T", e.Kind, key, v)
	}
}

// DataTime 读取时间字段（unix 秒）
func (e Event) DataTime(key string) (time.Time, error) {
	if v, ok := e.Data[key].(time.Time); ok {
		return v, nil
	}
	sec, err := e.DataInt64(key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0), nil
}
