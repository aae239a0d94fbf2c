package sync

import (
	"encoding/json"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/logger"
	"github.com/blues/cfsync/internal/logic"
	"github.com/blues/cfsync/internal/model"
	"gorm.io/gorm"
)

// Applier 事件应用器
// 把一条已排序的链上事件翻译为对关系库的一次幂等写入。
// 每条事件在单独的事务里应用，失败的事件不会留下半截写入。
// 项目金额汇总由数据库触发器维护，这里不重算派生状态。
type Applier struct {
	db            *gorm.DB
	users         *logic.UserLogic
	projects      *logic.ProjectLogic
	contributions *logic.ContributeRecordLogic
	events        *logic.EventLogic
	resolver      *ConflictResolver
}

// NewApplier 创建事件应用器
func NewApplier(db *gorm.DB) *Applier {
	return &Applier{
		db:            db,
		users:         logic.NewUserLogic(db),
		projects:      logic.NewProjectLogic(db),
		contributions: logic.NewContributeRecordLogic(db),
		events:        logic.NewEventLogic(db),
		resolver:      NewConflictResolver(),
	}
}

// Apply 应用单条事件
// 可恢复的情况（重复事件、项目尚未同步、未知事件类型）记日志后返回 nil，
// 真正的失败返回错误交由上层按周期重试
func (a *Applier) Apply(ev chain.Event) error {
	switch ev.Kind {
	case chain.EventProjectCreated, chain.EventContributionMade,
		chain.EventFundsWithdrawn, chain.EventRefundProcessed:
	default:
		logger.Warn("Unknown event kind %q at tx %s, skipping", ev.Kind, ev.TxHash)
		return nil
	}

	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := a.recordEvent(tx, ev); err != nil {
			return err
		}

		var err error
		switch ev.Kind {
		case chain.EventProjectCreated:
			err = a.applyProjectCreated(tx, ev)
		case chain.EventContributionMade:
			err = a.applyContributionMade(tx, ev)
		case chain.EventFundsWithdrawn:
			err = a.applyFundsWithdrawn(tx, ev)
		case chain.EventRefundProcessed:
			err = a.applyRefundProcessed(tx, ev)
		}
		if err != nil {
			return err
		}

		return a.events.MarkProcessed(tx, ev.TxHash, ev.LogIndex)
	})
}

// recordEvent 写入事件审计记录（幂等）
func (a *Applier) recordEvent(tx *gorm.DB, ev chain.Event) error {
	dataJSON, err := json.Marshal(ev.Data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	projectId, _ := ev.DataInt64("projectId")
	_, err = a.events.CreateIfAbsent(tx, &model.EventModel{
		ProjectId: projectId,
		EventType: string(ev.Kind),
		TxHash:    ev.TxHash,
		BlockNum:  ev.BlockNum,
		LogIndex:  ev.LogIndex,
		Data:      string(dataJSON),
	})
	return err
}

// applyProjectCreated 处理项目创建事件
// 链上ID已存在时跳过，不做任何写入
func (a *Applier) applyProjectCreated(tx *gorm.DB, ev chain.Event) error {
	projectId, err := ev.DataInt64("projectId")
	if err != nil {
		return err
	}
	creator, err := ev.DataString("creator")
	if err != nil {
		return err
	}
	title, err := ev.DataString("title")
	if err != nil {
		return err
	}
	goal, err := ev.DataAmount("goal")
	if err != nil {
		return err
	}
	deadline, err := ev.DataTime("deadline")
	if err != nil {
		return err
	}

	existing, err := a.projects.GetByChainId(tx, projectId)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Info("Project %d already exists, skipping duplicate creation event at tx %s", projectId, ev.TxHash)
		return nil
	}

	// 创建者用户记录不存在时先补齐，项目外键依赖它
	if _, err := a.users.EnsureUser(tx, creator); err != nil {
		return err
	}

	if err := a.projects.CreateFromChain(tx, &model.ProjectModel{
		Id:             projectId,
		Title:          title,
		TargetAmount:   goal,
		Deadline:       deadline,
		CreatorAddress: creator,
		TxHash:         ev.TxHash,
		BlockNum:       ev.BlockNum,
	}); err != nil {
		return err
	}

	logger.Info("Created project %d (%s) from block %d", projectId, title, ev.BlockNum)
	return nil
}

// applyContributionMade 处理贡献事件
// 项目尚未同步属于可恢复的顺序缺口，跳过等待后续周期自愈
func (a *Applier) applyContributionMade(tx *gorm.DB, ev chain.Event) error {
	projectId, err := ev.DataInt64("projectId")
	if err != nil {
		return err
	}
	contributor, err := ev.DataString("contributor")
	if err != nil {
		return err
	}
	amount, err := ev.DataAmount("amount")
	if err != nil {
		return err
	}

	project, err := a.projects.GetByChainId(tx, projectId)
	if err != nil {
		return err
	}
	if project == nil {
		logger.Warn("Contribution at tx %s references unknown project %d, skipping until creation event is synced", ev.TxHash, projectId)
		return nil
	}

	if _, err := a.users.EnsureUser(tx, contributor); err != nil {
		return err
	}

	inserted, err := a.contributions.CreateIfAbsent(tx, &model.ContributeRecordModel{
		ProjectId: projectId,
		Amount:    amount,
		Address:   contributor,
		TxHash:    ev.TxHash,
		BlockNum:  ev.BlockNum,
	})
	if err != nil {
		return err
	}
	if !inserted {
		logger.Debug("Contribution at tx %s already recorded, skipping", ev.TxHash)
		return nil
	}

	logger.Info("Recorded contribution of %s to project %d from %s", amount, projectId, contributor)
	return nil
}

// applyFundsWithdrawn 处理资金提取事件
// 无条件置为 withdrawn，重复设置同一状态无副作用
func (a *Applier) applyFundsWithdrawn(tx *gorm.DB, ev chain.Event) error {
	projectId, err := ev.DataInt64("projectId")
	if err != nil {
		return err
	}

	project, err := a.projects.GetByChainId(tx, projectId)
	if err != nil {
		return err
	}
	if project == nil {
		logger.Warn("Withdrawal at tx %s references unknown project %d, skipping until creation event is synced", ev.TxHash, projectId)
		return nil
	}

	status := a.resolver.ResolveStatus(model.ProjectStatusWithdrawn, project.Status)
	return a.projects.UpdateStatus(tx, projectId, status)
}

// applyRefundProcessed 处理退款事件
// 退款意味着目标未达成：项目还在进行中时转为 expired
func (a *Applier) applyRefundProcessed(tx *gorm.DB, ev chain.Event) error {
	projectId, err := ev.DataInt64("projectId")
	if err != nil {
		return err
	}

	project, err := a.projects.GetByChainId(tx, projectId)
	if err != nil {
		return err
	}
	if project == nil {
		logger.Warn("Refund at tx %s references unknown project %d, skipping until creation event is synced", ev.TxHash, projectId)
		return nil
	}

	if project.Status != model.ProjectStatusActive {
		return nil
	}

	status := a.resolver.ResolveStatus(model.ProjectStatusExpired, project.Status)
	return a.projects.UpdateStatus(tx, projectId, status)
}
