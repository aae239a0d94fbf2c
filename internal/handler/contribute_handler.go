package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/logger"
	"github.com/blues/cfsync/internal/logic"
	"github.com/blues/cfsync/internal/sync"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// ContributeHandler 贡献提交接口
// 确认等待在协程池里并发执行，互相之间以及与调度器之间不共享内存状态；
// 确认成功后走与定时同步相同的幂等贡献记录路径，先到先记，后到为空操作
type ContributeHandler struct {
	confirmer       *sync.Confirmer
	applier         *sync.Applier
	contributeLogic *logic.ContributeRecordLogic
	pool            *ants.Pool
	maxAttempts     int
}

// ConfirmContributionRequest 贡献确认请求
type ConfirmContributionRequest struct {
	TxHash      string `json:"tx_hash" binding:"required"`
	ProjectId   int64  `json:"project_id" binding:"required"`
	Contributor string `json:"contributor" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	MaxAttempts int    `json:"max_attempts"`
}

// NewContributeHandler 创建贡献处理器
func NewContributeHandler(db *gorm.DB, confirmer *sync.Confirmer, applier *sync.Applier, maxAttempts int) (*ContributeHandler, error) {
	pool, err := ants.NewPool(64)
	if err != nil {
		return nil, err
	}

	return &ContributeHandler{
		confirmer:       confirmer,
		applier:         applier,
		contributeLogic: logic.NewContributeRecordLogic(db),
		pool:            pool,
		maxAttempts:     maxAttempts,
	}, nil
}

// Release 释放协程池
func (h *ContributeHandler) Release() {
	h.pool.Release()
}

// ConfirmContribution 提交一笔贡献交易的确认跟踪
// 立即返回202，确认结果异步落库；即便跟踪失败，
// 定时同步扫到该事件时仍会补记
func (h *ContributeHandler) ConfirmContribution(c *gin.Context) {
	var req ConfirmContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = h.maxAttempts
	}

	err := h.pool.Submit(func() {
		h.trackConfirmation(req, maxAttempts)
	})
	if err != nil {
		ErrorResponse(c, http.StatusServiceUnavailable, "确认队列已满，请稍后重试")
		return
	}

	SuccessResponse(c, http.StatusAccepted, "确认跟踪已启动", gin.H{"tx_hash": req.TxHash})
}

// GetContribution 按交易哈希查询贡献记录
func (h *ContributeHandler) GetContribution(c *gin.Context) {
	record, err := h.contributeLogic.GetByTxHash(c.Param("tx_hash"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取贡献记录成功", record)
}

// trackConfirmation 等待确认并复用应用器的幂等贡献记录路径
func (h *ContributeHandler) trackConfirmation(req ConfirmContributionRequest, maxAttempts int) {
	confirmation, err := h.confirmer.WaitForConfirmation(context.Background(), req.TxHash, maxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrTxAborted):
			logger.Error("Contribution tx %s aborted on-chain: %v", req.TxHash, err)
		case errors.Is(err, sync.ErrConfirmTimeout):
			logger.Warn("Gave up waiting for tx %s, scheduled sync will pick it up: %v", req.TxHash, err)
		default:
			logger.Error("Confirmation tracking for tx %s failed: %v", req.TxHash, err)
		}
		return
	}

	// 与定时同步同一条应用路径：同一交易哈希只会落一条记录
	ev := chain.Event{
		Kind:      chain.EventContributionMade,
		TxHash:    req.TxHash,
		BlockNum:  confirmation.BlockNum,
		BlockTime: time.Now(),
		Data: map[string]interface{}{
			"projectId":   req.ProjectId,
			"contributor": req.Contributor,
			"amount":      req.Amount,
		},
	}
	if err := h.applier.Apply(ev); err != nil {
		logger.Error("Failed to record confirmed contribution %s: %v", req.TxHash, err)
	}
}
