package task

import (
	"time"

	"github.com/blues/cfsync/internal/config"
	"github.com/blues/cfsync/internal/logger"
	"github.com/blues/cfsync/internal/logic"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ProjectStatusJob 项目状态重估任务
// 对账只在收到链上事件时改状态，到期判定要靠本地时钟：
// 进行中的项目到期或达成目标后由这里收尾
type ProjectStatusJob struct {
	projectLogic *logic.ProjectLogic
	config       *config.Config
}

// NewProjectStatusJob 创建项目状态重估任务
func NewProjectStatusJob(db *gorm.DB, cfg *config.Config) *ProjectStatusJob {
	return &ProjectStatusJob{
		projectLogic: logic.NewProjectLogic(db),
		config:       cfg,
	}
}

// GetName 获取任务名称
func (j *ProjectStatusJob) GetName() string {
	return "project_status_reevaluator"
}

// GetSchedule 获取调度配置
func (j *ProjectStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ProjectStatusJob) Execute() {
	updated, err := j.projectLogic.ReevaluateStatuses(time.Now())
	if err != nil {
		logger.Error("Project status reevaluation failed: %v", err)
		return
	}
	if updated > 0 {
		logger.Info("Project status reevaluation completed, updated %d projects", updated)
	}
}
