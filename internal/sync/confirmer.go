package sync

import (
	"context"
	"errors"
	"time"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/logger"
)

// Confirmation 确认成功的结果
type Confirmation struct {
	TxHash   string `json:"tx_hash"`
	BlockNum int64  `json:"block_num"`
	Attempts int    `json:"attempts"`
}

// Confirmer 交易确认轮询器
// 跟踪一笔刚提交的交易直到终态或超时。固定间隔轮询，不做指数退避：
// 这条路径对延迟敏感，且已由 maxAttempts 封顶。
// 自身不写库，确认结果交给调用方走 Applier 的幂等贡献记录路径。
type Confirmer struct {
	chain    chain.QueryClient
	interval time.Duration
}

// NewConfirmer 创建确认轮询器
func NewConfirmer(client chain.QueryClient, interval time.Duration) *Confirmer {
	return &Confirmer{chain: client, interval: interval}
}

// WaitForConfirmation 阻塞等待交易确认
// 成功返回确认结果；链上终态失败返回 TxAbortedError；
// 轮询次数耗尽仍未见终态返回 ConfirmTimeoutError。
// 交易未被索引（not found）视为 pending 继续轮询。
func (c *Confirmer) WaitForConfirmation(ctx context.Context, txHash string, maxAttempts int) (*Confirmation, error) {
	if maxAttempts <= 0 {
		return nil, errors.New("maxAttempts must be positive")
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := c.chain.GetTransactionStatus(ctx, txHash)
		if err != nil {
			// 查询失败视为一次 pending 观察，留给下一次轮询
			logger.Warn("Failed to query status for tx %s (attempt %d/%d): %v", txHash, attempt, maxAttempts, err)
		} else {
			switch status.State {
			case chain.TxStateSuccess:
				logger.Info("Transaction %s confirmed at block %d after %d polls", txHash, status.BlockNum, attempt)
				return &Confirmation{
					TxHash:   txHash,
					BlockNum: status.BlockNum,
					Attempts: attempt,
				}, nil
			case chain.TxStateAborted:
				return nil, &TxAbortedError{TxHash: txHash, Reason: status.Reason}
			case chain.TxStatePending:
				logger.Debug("Transaction %s still pending (attempt %d/%d)", txHash, attempt, maxAttempts)
			}
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.interval):
		}
	}

	return nil, &ConfirmTimeoutError{TxHash: txHash, Attempts: maxAttempts}
}
