package sync

import (
	"errors"
	"fmt"
)

// 确认轮询的两类硬失败
// aborted 表示链上已给出终态，timeout 表示放弃等待但结果未知，
// 调用方需要区分这两种情况
var (
	ErrTxAborted      = errors.New("transaction aborted on-chain")
	ErrConfirmTimeout = errors.New("transaction confirmation timed out")
)

// TxAbortedError 交易在链上执行失败
type TxAbortedError struct {
	TxHash string
	Reason string
}

func (e *TxAbortedError) Error() string {
	return fmt.Sprintf("transaction %s aborted: %s", e.TxHash, e.Reason)
}

func (e *TxAbortedError) Unwrap() error {
	return ErrTxAborted
}

// ConfirmTimeoutError 确认轮询耗尽次数仍未见终态
type ConfirmTimeoutError struct {
	TxHash   string
	Attempts int
}

func (e *ConfirmTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed after %d polls", e.TxHash, e.Attempts)
}

func (e *ConfirmTimeoutError) Unwrap() error {
	return ErrConfirmTimeout
}
