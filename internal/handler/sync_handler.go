package handler

import (
	"net/http"

	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/sync"
	"github.com/gin-gonic/gin"
)

// SyncHandler 对账调度器运维接口
type SyncHandler struct {
	syncer *sync.Syncer
}

// NewSyncHandler 创建同步处理器
func NewSyncHandler(syncer *sync.Syncer) *SyncHandler {
	return &SyncHandler{syncer: syncer}
}

// GetStatus 获取同步状态
func (h *SyncHandler) GetStatus(c *gin.Context) {
	status, err := h.syncer.GetStatus()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取同步状态成功", status)
}

// Start 启动同步
func (h *SyncHandler) Start(c *gin.Context) {
	if err := h.syncer.Start(); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "同步已启动", nil)
}

// Stop 停止同步
func (h *SyncHandler) Stop(c *gin.Context) {
	h.syncer.Stop()
	SuccessResponse(c, http.StatusOK, "同步已停止", nil)
}

// SyncStream 手动触发单个事件流同步（诊断用）
func (h *SyncHandler) SyncStream(c *gin.Context) {
	stream := chain.EventKind(c.Param("stream"))

	var err error
	switch stream {
	case chain.EventProjectCreated:
		err = h.syncer.SyncProjectCreated()
	case chain.EventContributionMade:
		err = h.syncer.SyncContributions()
	case chain.EventFundsWithdrawn:
		err = h.syncer.SyncWithdrawals()
	case chain.EventRefundProcessed:
		err = h.syncer.SyncRefunds()
	default:
		ErrorResponse(c, http.StatusBadRequest, "未知的事件流")
		return
	}

	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "同步完成", nil)
}
