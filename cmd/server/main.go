package main

import (
	"github.com/blues/cfsync/internal/chain"
	"github.com/blues/cfsync/internal/config"
	"github.com/blues/cfsync/internal/logger"
	"github.com/blues/cfsync/internal/repository"
	"github.com/blues/cfsync/internal/router"
	"github.com/blues/cfsync/internal/sync"
	"github.com/blues/cfsync/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		logger.Fatal("Failed to setup logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链查询客户端
	chainClient, err := chain.NewEthereumClient(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}

	// 启动对账调度器
	syncer := sync.NewSyncer(chainClient, db, cfg.Sync)
	if err := syncer.Start(); err != nil {
		logger.Fatal("Failed to start syncer: %v", err)
	}
	defer syncer.Stop()

	// 启动定时任务
	taskManager, err := task.NewManager(db, cfg)
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	if err := taskManager.Start(); err != nil {
		logger.Fatal("Failed to start task manager: %v", err)
	}
	defer taskManager.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	confirmer := sync.NewConfirmer(chainClient, cfg.Confirm.PollInterval())
	r, err := router.Setup(db, syncer, confirmer, cfg)
	if err != nil {
		logger.Fatal("Failed to setup router: %v", err)
	}

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
