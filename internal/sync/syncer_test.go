package sync

import (
	"testing"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/config"
	"github.com/blues/cfsync/internal/model"
)

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Interval:       60,
		RetryBaseDelay: 0,
		RetryMaxCount:  2,
	}
}

func TestSyncer_RunCycleAppliesAllStreams(t *testing.T) {
	db := newTestDB(t)
	client := &fakeQueryClient{
		events: map[chain.EventKind][]chain.Event{
			chain.EventProjectCreated: {
				projectCreatedEvent(1, 100, "0xtx1"),
				projectCreatedEvent(2, 105, "0xtx2"),
			},
			chain.EventContributionMade: {
				contributionEvent(1, 110, "0xtx3", "0xBacker", "50"),
			},
			chain.EventFundsWithdrawn: {
				withdrawEvent(2, 120, "0xtx4"),
			},
		},
	}
	s := NewSyncer(client, db, testSyncConfig())

	if err := s.RunCycle(); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	var projects int64
	if err := db.Model(&model.ProjectModel{}).Count(&projects).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if projects != 2 {
		t.Errorf("got %d projects, want 2", projects)
	}

	var records int64
	if err := db.Model(&model.ContributeRecordModel{}).Count(&records).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if records != 1 {
		t.Errorf("got %d contribution records, want 1", records)
	}

	var withdrawn model.ProjectModel
	if err := db.First(&withdrawn, int64(2)).Error; err != nil {
		t.Fatalf("project 2 not found: %v", err)
	}
	if withdrawn.Status != model.ProjectStatusWithdrawn {
		t.Errorf("project 2 status = %s, want withdrawn", withdrawn.Status)
	}

	cursors, err := s.Cursors().All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if cursors[string(chain.EventProjectCreated)] != 105 {
		t.Errorf("ProjectCreated cursor = %d, want 105", cursors[string(chain.EventProjectCreated)])
	}
	if cursors[string(chain.EventContributionMade)] != 110 {
		t.Errorf("ContributionMade cursor = %d, want 110", cursors[string(chain.EventContributionMade)])
	}
	if cursors[string(chain.EventFundsWithdrawn)] != 120 {
		t.Errorf("FundsWithdrawn cursor = %d, want 120", cursors[string(chain.EventFundsWithdrawn)])
	}
	if cursors[string(chain.EventRefundProcessed)] != 0 {
		t.Errorf("empty RefundProcessed stream moved cursor to %d", cursors[string(chain.EventRefundProcessed)])
	}
}

func TestSyncer_SecondCycleIsNoOp(t *testing.T) {
	db := newTestDB(t)
	client := &fakeQueryClient{
		events: map[chain.EventKind][]chain.Event{
			chain.EventProjectCreated: {projectCreatedEvent(1, 100, "0xtx1")},
		},
		// 不按游标过滤，第二轮会重复投递同一批事件
		ignoreSince: true,
	}
	s := NewSyncer(client, db, testSyncConfig())

	if err := s.RunCycle(); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	if err := s.RunCycle(); err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}

	var projects int64
	if err := db.Model(&model.ProjectModel{}).Count(&projects).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if projects != 1 {
		t.Errorf("got %d projects after redelivery, want 1", projects)
	}

	block, err := s.Cursors().Get(chain.EventProjectCreated)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if block != 100 {
		t.Errorf("cursor = %d, want 100", block)
	}
}

func TestSyncer_CursorStopsBeforeFailedEvent(t *testing.T) {
	db := newTestDB(t)
	bad := projectCreatedEvent(2, 200, "0xbad")
	bad.Data["goal"] = "0" // 无效目标金额，应用必然失败
	client := &fakeQueryClient{
		events: map[chain.EventKind][]chain.Event{
			chain.EventProjectCreated: {
				projectCreatedEvent(1, 100, "0xtx1"),
				bad,
				projectCreatedEvent(3, 300, "0xtx3"),
			},
		},
	}
	s := NewSyncer(client, db, testSyncConfig())

	err := s.SyncProjectCreated()
	if err == nil {
		t.Fatalf("expected stream error from failing event")
	}

	// 失败事件之后的事件仍被尝试
	var project model.ProjectModel
	if dbErr := db.First(&project, int64(3)).Error; dbErr != nil {
		t.Errorf("event after the failure was not applied: %v", dbErr)
	}

	// 游标停在失败事件之前，下个周期重新拉到它
	block, getErr := s.Cursors().Get(chain.EventProjectCreated)
	if getErr != nil {
		t.Fatalf("Get failed: %v", getErr)
	}
	if block != 100 {
		t.Errorf("cursor = %d, want 100 (before failed block 200)", block)
	}
}

func TestSyncer_RetryRecoversFromTransientFetchError(t *testing.T) {
	db := newTestDB(t)
	client := &fakeQueryClient{
		events: map[chain.EventKind][]chain.Event{
			chain.EventProjectCreated: {projectCreatedEvent(1, 100, "0xtx1")},
		},
		// 第一轮四个流的拉取全部失败，第二轮恢复
		failFetches: len(chain.StreamOrder),
	}
	s := NewSyncer(client, db, testSyncConfig())

	var cycleErrs []error
	unsubscribe := s.OnError(func(err error) {
		cycleErrs = append(cycleErrs, err)
	})
	defer unsubscribe()

	s.runCycleWithRetry()

	if len(cycleErrs) != 1 {
		t.Errorf("got %d error callbacks, want 1 (one failed cycle)", len(cycleErrs))
	}

	block, err := s.Cursors().Get(chain.EventProjectCreated)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if block != 100 {
		t.Errorf("cursor = %d, want 100 after retry succeeded", block)
	}
}

func TestSyncer_OnErrorUnsubscribe(t *testing.T) {
	db := newTestDB(t)
	client := &fakeQueryClient{failFetches: 1000}
	cfg := testSyncConfig()
	cfg.RetryMaxCount = 1
	s := NewSyncer(client, db, cfg)

	var calls int
	unsubscribe := s.OnError(func(error) { calls++ })

	s.runCycleWithRetry()
	if calls != 1 {
		t.Fatalf("got %d callbacks before unsubscribe, want 1", calls)
	}

	unsubscribe()
	s.runCycleWithRetry()
	if calls != 1 {
		t.Errorf("callback fired after unsubscribe")
	}
}

func TestSyncer_StartStopLifecycle(t *testing.T) {
	db := newTestDB(t)
	client := &fakeQueryClient{}
	s := NewSyncer(client, db, testSyncConfig())

	if s.IsRunning() {
		t.Fatalf("syncer reports running before start")
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Errorf("syncer not running after start")
	}

	// 启动即同步执行了一轮
	if client.fetchCount() < len(chain.StreamOrder) {
		t.Errorf("initial cycle fetched %d times, want at least %d", client.fetchCount(), len(chain.StreamOrder))
	}

	// 重复启动只告警，不报错
	if err := s.Start(); err != nil {
		t.Errorf("duplicate Start returned error: %v", err)
	}

	s.Stop()
	if s.IsRunning() {
		t.Errorf("syncer still running after stop")
	}

	// 重复停止无副作用
	s.Stop()
}

func TestSyncer_GetStatus(t *testing.T) {
	db := newTestDB(t)
	client := &fakeQueryClient{
		events: map[chain.EventKind][]chain.Event{
			chain.EventProjectCreated: {projectCreatedEvent(1, 100, "0xtx1")},
		},
	}
	s := NewSyncer(client, db, testSyncConfig())

	if err := s.RunCycle(); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	status, err := s.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status["running"] != false {
		t.Errorf("running = %v, want false", status["running"])
	}
	cursors, ok := status["cursors"].(map[string]int64)
	if !ok {
		t.Fatalf("cursors has unexpected type %T", status["cursors"])
	}
	if cursors[string(chain.EventProjectCreated)] != 100 {
		t.Errorf("ProjectCreated cursor = %d, want 100", cursors[string(chain.EventProjectCreated)])
	}
}
