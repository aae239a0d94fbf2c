package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/cfsync/internal/logger"
	"github.com/blues/cfsync/internal/model"
	"gorm.io/gorm"
)

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	db *gorm.DB
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// CreateFromChain 从链上事件创建项目
// 调用方负责先检查链上ID是否已存在
func (p *ProjectLogic) CreateFromChain(db *gorm.DB, project *model.ProjectModel) error {
	if err := p.validateProject(project); err != nil {
		return err
	}
	if db == nil {
		db = p.db
	}

	project.Status = model.ProjectStatusActive
	if err := db.Create(project).Error; err != nil {
		return fmt.Errorf("创建项目失败: %w", err)
	}

	return nil
}

// GetByChainId 按链上项目ID获取项目
// 不存在时返回 (nil, nil)，由调用方决定是否为错误
func (p *ProjectLogic) GetByChainId(db *gorm.DB, chainId int64) (*model.ProjectModel, error) {
	if db == nil {
		db = p.db
	}

	var project model.ProjectModel
	if err := db.First(&project, chainId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取项目失败: %w", err)
	}
	return &project, nil
}

// GetProjects 获取项目列表
func (p *ProjectLogic) GetProjects() ([]model.ProjectModel, error) {
	var projects []model.ProjectModel
	if err := p.db.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}
	return projects, nil
}

// GetProject 获取项目详情
func (p *ProjectLogic) GetProject(id int64) (*model.ProjectModel, error) {
	project, err := p.GetByChainId(nil, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.New("项目不存在")
	}
	return project, nil
}

// UpdateStatus 更新项目状态
// 终态（funded/expired/withdrawn）不允许回到 active，重复设置同一状态无副作用
func (p *ProjectLogic) UpdateStatus(db *gorm.DB, chainId int64, status model.ProjectStatus) error {
	if db == nil {
		db = p.db
	}

	project, err := p.GetByChainId(db, chainId)
	if err != nil {
		return err
	}
	if project == nil {
		return errors.New("项目不存在")
	}

	if project.Status == status {
		return nil
	}

	if project.Status.IsTerminal() && status == model.ProjectStatusActive {
		logger.Warn("Refusing to revert project %d from terminal status %s to active", chainId, project.Status)
		return nil
	}

	if err := db.Model(&model.ProjectModel{}).Where("id = ?", chainId).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("更新项目状态失败: %w", err)
	}

	return nil
}

// ReevaluateStatuses 重估进行中项目的状态
// 到期且达成目标 -> funded；到期未达成 -> expired；未到期但达成目标 -> funded
// 返回更新的项目数
func (p *ProjectLogic) ReevaluateStatuses(now time.Time) (int, error) {
	var projects []model.ProjectModel
	if err := p.db.Where("status = ?", model.ProjectStatusActive).Find(&projects).Error; err != nil {
		return 0, fmt.Errorf("获取进行中项目失败: %w", err)
	}

	updated := 0
	for _, project := range projects {
		var newStatus model.ProjectStatus
		reachedGoal := project.CurrentAmount.GreaterThanOrEqual(project.TargetAmount)

		switch {
		case now.After(project.Deadline) && reachedGoal:
			newStatus = model.ProjectStatusFunded
		case now.After(project.Deadline):
			newStatus = model.ProjectStatusExpired
		case reachedGoal:
			newStatus = model.ProjectStatusFunded
		default:
			continue
		}

		if err := p.UpdateStatus(nil, project.Id, newStatus); err != nil {
			logger.Error("Failed to update project %d status: %v", project.Id, err)
			continue
		}

		logger.Info("Updated project %d status from %s to %s", project.Id, project.Status, newStatus)
		updated++
	}

	return updated, nil
}

// validateProject 验证项目数据
func (p *ProjectLogic) validateProject(project *model.ProjectModel) error {
	if project.Id <= 0 {
		return errors.New("链上项目ID无效")
	}
	if project.Title == "" {
		return errors.New("项目标题不能为空")
	}
	if project.CreatorAddress == "" {
		return errors.New("创建者地址不能为空")
	}
	if !project.TargetAmount.IsPositive() {
		return errors.New("目标金额必须大于0")
	}
	return nil
}
