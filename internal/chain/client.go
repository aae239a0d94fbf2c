package chain

import (
	"context"
)

// TxState 交易状态
type TxState string

const (
	TxStatePending TxState = "pending" // 未上链或未出结果
	TxStateSuccess TxState = "success" // 执行成功
	TxStateAborted TxState = "aborted" // 执行失败，终态
)

// TxStatus 交易状态查询结果
type TxStatus struct {
	State    TxState `json:"state"`
	BlockNum int64   `json:"block_num"` // 成功时为所在区块号
	Reason   string  `json:"reason"`    // 失败原因
}

// QueryClient 链查询客户端
// 对账引擎只消费该接口，生产实现为 EthereumClient，测试用假实现
type QueryClient interface {
	// FetchEvents 拉取某一事件流自 sinceBlock（含）之后的事件，返回顺序不保证
	FetchEvents(ctx context.Context, kind EventKind, sinceBlock int64) ([]Event, error)

	// GetTransactionStatus 查询单笔交易状态
	// 交易尚未被索引时返回 pending，而不是错误
	GetTransactionStatus(ctx context.Context, txHash string) (*TxStatus, error)
}
