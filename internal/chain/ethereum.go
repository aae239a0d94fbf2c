package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/blues/cfsync/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// 众筹合约ABI定义（事件部分）
const contractABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": true, "name": "creator", "type": "address"},
			{"indexed": false, "name": "title", "type": "string"},
			{"indexed": false, "name": "goal", "type": "uint256"},
			{"indexed": false, "name": "deadline", "type": "uint256"}
		],
		"name": "ProjectCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": true, "name": "contributor", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "ContributionMade",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": true, "name": "creator", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "FundsWithdrawn",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "projectId", "type": "uint256"},
			{"indexed": true, "name": "contributor", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "RefundProcessed",
		"type": "event"
	}
]`

// EthereumClient 基于以太坊节点的链查询客户端
type EthereumClient struct {
	client       *ethclient.Client
	contractAddr common.Address
	contractABI  abi.ABI
	startBlock   int64
}

// NewEthereumClient 创建以太坊链查询客户端
func NewEthereumClient(cfg config.ChainConfig) (*EthereumClient, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &EthereumClient{
		client:       client,
		contractAddr: common.HexToAddress(cfg.ContractAddr),
		contractABI:  parsedABI,
		startBlock:   cfg.StartBlock,
	}, nil
}

// FetchEvents 拉取某一事件流自 sinceBlock 之后的事件
func (c *EthereumClient) FetchEvents(ctx context.Context, kind EventKind, sinceBlock int64) ([]Event, error) {
	eventDef, ok := c.contractABI.Events[string(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown event kind: %s", kind)
	}

	// 合约部署之前不会有事件，新游标从部署区块开始扫
	if sinceBlock < c.startBlock {
		sinceBlock = c.startBlock
	}

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(sinceBlock),
		Addresses: []common.Address{c.contractAddr},
		Topics:    [][]common.Hash{{eventDef.ID}},
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter %s logs: %w", kind, err)
	}

	// 同一批次内区块时间戳按区块号缓存，避免重复查头
	blockTimes := make(map[uint64]time.Time)

	events := make([]Event, 0, len(logs))
	for _, l := range logs {
		data, err := c.parseEventData(kind, l)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s event at tx %s: %w", kind, l.TxHash.Hex(), err)
		}

		blockTime, ok := blockTimes[l.BlockNumber]
		if !ok {
			header, err := c.client.HeaderByNumber(ctx, new(big.Int).SetUint64(l.BlockNumber))
			if err != nil {
				return nil, fmt.Errorf("failed to get header for block %d: %w", l.BlockNumber, err)
			}
			blockTime = time.Unix(int64(header.Time), 0)
			blockTimes[l.BlockNumber] = blockTime
		}

		events = append(events, Event{
			Kind:      kind,
			TxHash:    l.TxHash.Hex(),
			TxIndex:   int64(l.TxIndex),
			LogIndex:  int64(l.Index),
			BlockNum:  int64(l.BlockNumber),
			BlockTime: blockTime,
			Data:      NormalizeEventData(data),
		})
	}

	return events, nil
}

// parseEventData 解析事件日志为载荷
func (c *EthereumClient) parseEventData(kind EventKind, l types.Log) (map[string]interface{}, error) {
	if len(l.Topics) < 3 {
		return nil, fmt.Errorf("invalid %s event: insufficient topics", kind)
	}

	data := make(map[string]interface{})
	data["projectId"] = new(big.Int).SetBytes(l.Topics[1].Bytes()).Int64()

	// topic[2] 为地址参数：创建者或贡献者
	addr := common.BytesToAddress(l.Topics[2].Bytes()).Hex()
	switch kind {
	case EventProjectCreated, EventFundsWithdrawn:
		data["creator"] = addr
	case EventContributionMade, EventRefundProcessed:
		data["contributor"] = addr
	}

	// 解析非索引参数
	if len(l.Data) > 0 {
		unpacked := make(map[string]interface{})
		if err := c.contractABI.UnpackIntoMap(unpacked, string(kind), l.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack event data: %w", err)
		}
		for k, v := range unpacked {
			data[k] = v
		}
	}

	return data, nil
}

// GetTransactionStatus 查询交易状态
// 交易尚未被索引时报告 pending 而不是错误
func (c *EthereumClient) GetTransactionStatus(ctx context.Context, txHash string) (*TxStatus, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return &TxStatus{State: TxStatePending}, nil
		}
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	if receipt.Status == types.ReceiptStatusSuccessful {
		return &TxStatus{
			State:    TxStateSuccess,
			BlockNum: receipt.BlockNumber.Int64(),
		}, nil
	}

	return &TxStatus{
		State:  TxStateAborted,
		Reason: "transaction reverted on-chain",
	}, nil
}

// GetLatestBlock 获取最新区块号
func (c *EthereumClient) GetLatestBlock(ctx context.Context) (int64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block header: %w", err)
	}
	return header.Number.Int64(), nil
}
