package router

import (
	"github.com/blues/cfsync/internal/config"
	"github.com/blues/cfsync/internal/handler"
	"github.com/blues/cfsync/internal/sync"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, syncer *sync.Syncer, confirmer *sync.Confirmer, cfg *config.Config) (*gin.Engine, error) {
	r := gin.Default()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "cfsync",
		})
	})

	contributeHandler, err := handler.NewContributeHandler(db, confirmer, syncer.Applier(), cfg.Confirm.MaxAttempts)
	if err != nil {
		return nil, err
	}

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 同步运维路由
		syncHandler := handler.NewSyncHandler(syncer)
		syncGroup := v1.Group("/sync")
		{
			syncGroup.GET("/status", syncHandler.GetStatus)
			syncGroup.POST("/start", syncHandler.Start)
			syncGroup.POST("/stop", syncHandler.Stop)
			syncGroup.POST("/streams/:stream", syncHandler.SyncStream)
		}

		// 项目查询路由
		projectHandler := handler.NewProjectHandler(db)
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/contributions", projectHandler.GetProjectContributions)
		}

		// 贡献确认路由
		contributions := v1.Group("/contributions")
		{
			contributions.POST("/confirm", contributeHandler.ConfirmContribution)
			contributions.GET("/:tx_hash", contributeHandler.GetContribution)
		}
	}

	return r, nil
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
