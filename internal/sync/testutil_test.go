package sync

import (
	"context"
	"fmt"
	"strings"
	gosync "sync"
	"testing"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 每个测试一个独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// fakeQueryClient 脚本化的链查询客户端假实现
type fakeQueryClient struct {
	mu gosync.Mutex

	events      map[chain.EventKind][]chain.Event
	ignoreSince bool // 为真时不按 sinceBlock 过滤，模拟乱序/重复投递
	failFetches int  // 前N次 FetchEvents 返回错误
	fetchCalls  int

	statusScript []*chain.TxStatus
	statusErrs   []error
	polls        int
}

func (f *fakeQueryClient) FetchEvents(_ context.Context, kind chain.EventKind, sinceBlock int64) ([]chain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchCalls++
	if f.failFetches > 0 {
		f.failFetches--
		return nil, fmt.Errorf("rpc: connection refused")
	}

	var out []chain.Event
	for _, ev := range f.events[kind] {
		if f.ignoreSince || ev.BlockNum >= sinceBlock {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeQueryClient) GetTransactionStatus(_ context.Context, _ string) (*chain.TxStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.polls
	f.polls++

	if idx < len(f.statusErrs) && f.statusErrs[idx] != nil {
		return nil, f.statusErrs[idx]
	}
	if idx >= len(f.statusScript) {
		idx = len(f.statusScript) - 1
	}
	if idx < 0 {
		return &chain.TxStatus{State: chain.TxStatePending}, nil
	}
	return f.statusScript[idx], nil
}

func (f *fakeQueryClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func (f *fakeQueryClient) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

// 事件构造辅助

func projectCreatedEvent(projectId int64, block int64, txHash string) chain.Event {
	return chain.Event{
		Kind:     chain.EventProjectCreated,
		TxHash:   txHash,
		LogIndex: 0,
		BlockNum: block,
		Data: map[string]interface{}{
			"projectId": projectId,
			"creator":   "0xCreator",
			"title":     fmt.Sprintf("Project %d", projectId),
			"goal":      "1000",
			"deadline":  int64(4102444800), // 2100-01-01
		},
	}
}

func contributionEvent(projectId int64, block int64, txHash, contributor, amount string) chain.Event {
	return chain.Event{
		Kind:     chain.EventContributionMade,
		TxHash:   txHash,
		LogIndex: 0,
		BlockNum: block,
		Data: map[string]interface{}{
			"projectId":   projectId,
			"contributor": contributor,
			"amount":      amount,
		},
	}
}

func withdrawEvent(projectId int64, block int64, txHash string) chain.Event {
	return chain.Event{
		Kind:     chain.EventFundsWithdrawn,
		TxHash:   txHash,
		LogIndex: 0,
		BlockNum: block,
		Data: map[string]interface{}{
			"projectId": projectId,
			"creator":   "0xCreator",
			"amount":    "1000",
		},
	}
}

func refundEvent(projectId int64, block int64, txHash string) chain.Event {
	return chain.Event{
		Kind:     chain.EventRefundProcessed,
		TxHash:   txHash,
		LogIndex: 0,
		BlockNum: block,
		Data: map[string]interface{}{
			"projectId":   projectId,
			"contributor": "0xBacker",
			"amount":      "100",
		},
	}
}
