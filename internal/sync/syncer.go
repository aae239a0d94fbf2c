package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/config"
	"github.com/blues/cfsync/internal/logger"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Syncer 对账调度器
// 周期性地把链上事件流同步进关系库。一个周期内四个流按固定顺序
// 串行同步，周期之间不重叠，链上来源的行没有并发写入方。
// 依赖全部通过构造函数注入，多个实例可以在测试中共存。
type Syncer struct {
	chain   chain.QueryClient
	applier *Applier
	cursors *CursorStore
	cfg     config.SyncConfig

	mu        gosync.Mutex
	running   bool
	scheduler gocron.Scheduler

	errMu       gosync.Mutex
	errHandlers map[int]func(error)
	nextHandler int
}

// NewSyncer 创建对账调度器
func NewSyncer(client chain.QueryClient, db *gorm.DB, cfg config.SyncConfig) *Syncer {
	return &Syncer{
		chain:       client,
		applier:     NewApplier(db),
		cursors:     NewCursorStore(db),
		cfg:         cfg,
		errHandlers: make(map[int]func(error)),
	}
}

// Applier 暴露应用器，确认路径复用其幂等贡献记录逻辑
func (s *Syncer) Applier() *Applier {
	return s.applier
}

// Cursors 暴露游标存储，供状态查询与运维重置
func (s *Syncer) Cursors() *CursorStore {
	return s.cursors
}

// OnError 注册周期错误回调，返回注销函数
func (s *Syncer) OnError(cb func(error)) func() {
	s.errMu.Lock()
	id := s.nextHandler
	s.nextHandler++
	s.errHandlers[id] = cb
	s.errMu.Unlock()

	return func() {
		s.errMu.Lock()
		delete(s.errHandlers, id)
		s.errMu.Unlock()
	}
}

// notifyError 分发周期错误
func (s *Syncer) notifyError(err error) {
	s.errMu.Lock()
	handlers := make([]func(error), 0, len(s.errHandlers))
	for _, h := range s.errHandlers {
		handlers = append(handlers, h)
	}
	s.errMu.Unlock()

	for _, h := range handlers {
		h(err)
	}
}

// Start 启动调度
// 先同步执行一轮全量同步，再按配置间隔周期执行。
// 重复调用只记警告，不视为错误
func (s *Syncer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warn("Syncer already running, ignoring duplicate start")
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = scheduler
	s.running = true
	s.mu.Unlock()

	// 启动即做一轮，不等第一个tick
	s.runCycleWithRetry()

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.PollInterval()),
		gocron.NewTask(s.runCycleWithRetry),
		gocron.WithName("chain_sync_cycle"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to register sync job: %w", err)
	}

	scheduler.Start()
	logger.Info("Chain syncer started, polling every %s", s.cfg.PollInterval())
	return nil
}

// Stop 停止调度
// 只阻止后续周期，进行中的周期会执行完。重复调用无副作用
func (s *Syncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	if err := s.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown sync scheduler: %v", err)
	}
	s.scheduler = nil
	s.running = false
	logger.Info("Chain syncer stopped")
}

// IsRunning 是否在运行
func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runCycleWithRetry 执行一轮全量同步，失败时指数退避重试
// 重试耗尽不停止调度器，记日志后等待下一个正常tick
func (s *Syncer) runCycleWithRetry() {
	maxAttempts := s.cfg.RetryMaxCount
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := s.cfg.BaseDelay()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.RunCycle()
		if err == nil {
			return
		}

		logger.Error("Sync cycle failed (attempt %d/%d): %v", attempt, maxAttempts, err)
		s.notifyError(err)

		if attempt == maxAttempts {
			break
		}
		time.Sleep(delay)
		delay *= 2
	}

	logger.Error("Sync cycle exhausted %d attempts, waiting for next scheduled tick", maxAttempts)
}

// RunCycle 按固定顺序同步所有事件流
// 某个流失败不妨碍后面的流在同一周期内被尝试，错误聚合后上抛重试
func (s *Syncer) RunCycle() error {
	var errs []error
	for _, stream := range chain.StreamOrder {
		if err := s.SyncStream(stream); err != nil {
			errs = append(errs, fmt.Errorf("%s stream: %w", stream, err))
		}
	}
	return errors.Join(errs...)
}

// SyncStream 同步单个事件流：拉取 -> 排序 -> 逐条应用 -> 推进游标
// 游标只跨过连续成功前缀：首个失败事件之后的事件仍会被尝试，
// 但游标不会越过失败事件所在区块，下个周期会重新拉到它
func (s *Syncer) SyncStream(kind chain.EventKind) error {
	cursor, err := s.cursors.Get(kind)
	if err != nil {
		return err
	}

	events, err := s.chain.FetchEvents(context.Background(), kind, cursor+1)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}
	if len(events) == 0 {
		logger.Debug("No new %s events since block %d", kind, cursor)
		return nil
	}

	ordered := SortEvents(events)

	var firstErr error
	var maxApplied int64
	for _, ev := range ordered {
		if err := s.applier.Apply(ev); err != nil {
			logger.Error("Failed to apply %s event at block %d (tx %s): %v", kind, ev.BlockNum, ev.TxHash, err)
			if firstErr == nil {
				firstErr = err
				if limit := ev.BlockNum - 1; maxApplied > limit {
					maxApplied = limit
				}
			}
			continue
		}
		if firstErr == nil && ev.BlockNum > maxApplied {
			maxApplied = ev.BlockNum
		}
	}

	if maxApplied > 0 {
		if _, err := s.cursors.Advance(kind, maxApplied); err != nil {
			return err
		}
	}

	if firstErr != nil {
		return fmt.Errorf("applied with errors: %w", firstErr)
	}

	logger.Debug("Synced %d %s events, cursor at block %d", len(ordered), kind, maxApplied)
	return nil
}

// 按流名的单独同步入口，供诊断接口与测试调用

// SyncProjectCreated 同步项目创建流
func (s *Syncer) SyncProjectCreated() error {
	return s.SyncStream(chain.EventProjectCreated)
}

// SyncContributions 同步贡献流
func (s *Syncer) SyncContributions() error {
	return s.SyncStream(chain.EventContributionMade)
}

// SyncWithdrawals 同步提取流
func (s *Syncer) SyncWithdrawals() error {
	return s.SyncStream(chain.EventFundsWithdrawn)
}

// SyncRefunds 同步退款流
func (s *Syncer) SyncRefunds() error {
	return s.SyncStream(chain.EventRefundProcessed)
}

// GetStatus 获取同步状态
func (s *Syncer) GetStatus() (map[string]interface{}, error) {
	cursors, err := s.cursors.All()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"running": s.IsRunning(),
		"cursors": cursors,
	}, nil
}
