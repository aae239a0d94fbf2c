package sync

import (
	"testing"

	"github.com/blues/cfsync/internal/chain"
)

func TestCursorStore_GetMissingReturnsZero(t *testing.T) {
	db := newTestDB(t)
	store := NewCursorStore(db)

	block, err := store.Get(chain.EventProjectCreated)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if block != 0 {
		t.Errorf("got block %d, want 0 for fresh stream", block)
	}
}

func TestCursorStore_Advance(t *testing.T) {
	db := newTestDB(t)
	store := NewCursorStore(db)

	advanced, err := store.Advance(chain.EventProjectCreated, 100)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if !advanced {
		t.Errorf("expected cursor to advance from 0 to 100")
	}

	block, err := store.Get(chain.EventProjectCreated)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if block != 100 {
		t.Errorf("got block %d, want 100", block)
	}
}

func TestCursorStore_AdvanceNeverRegresses(t *testing.T) {
	db := newTestDB(t)
	store := NewCursorStore(db)

	if _, err := store.Advance(chain.EventContributionMade, 200); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// 低于当前值的观察不回退游标
	advanced, err := store.Advance(chain.EventContributionMade, 150)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if advanced {
		t.Errorf("cursor must not move backwards")
	}

	// 等于当前值也不算推进
	advanced, err = store.Advance(chain.EventContributionMade, 200)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if advanced {
		t.Errorf("cursor at same height must not report advance")
	}

	block, err := store.Get(chain.EventContributionMade)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if block != 200 {
		t.Errorf("got block %d, want 200", block)
	}
}

func TestCursorStore_StreamsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	store := NewCursorStore(db)

	if _, err := store.Advance(chain.EventProjectCreated, 300); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if _, err := store.Advance(chain.EventFundsWithdrawn, 150); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	cursors, err := store.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if cursors[string(chain.EventProjectCreated)] != 300 {
		t.Errorf("ProjectCreated cursor = %d, want 300", cursors[string(chain.EventProjectCreated)])
	}
	if cursors[string(chain.EventFundsWithdrawn)] != 150 {
		t.Errorf("FundsWithdrawn cursor = %d, want 150", cursors[string(chain.EventFundsWithdrawn)])
	}
	if cursors[string(chain.EventContributionMade)] != 0 {
		t.Errorf("untouched stream cursor = %d, want 0", cursors[string(chain.EventContributionMade)])
	}
}

func TestCursorStore_PersistsAcrossInstances(t *testing.T) {
	db := newTestDB(t)

	first := NewCursorStore(db)
	if _, err := first.Advance(chain.EventRefundProcessed, 777); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// 新实例看到的是持久化状态，模拟进程重启
	second := NewCursorStore(db)
	block, err := second.Get(chain.EventRefundProcessed)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if block != 777 {
		t.Errorf("got block %d, want 777", block)
	}
}

func TestCursorStore_Reset(t *testing.T) {
	db := newTestDB(t)
	store := NewCursorStore(db)

	if _, err := store.Advance(chain.EventProjectCreated, 500); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	if err := store.Reset(chain.EventProjectCreated, 100); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	block, err := store.Get(chain.EventProjectCreated)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if block != 100 {
		t.Errorf("got block %d, want 100 after reset", block)
	}
}
