package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIHandler 同步管理API接口
type APIHandler interface {
	TriggerSync(c *gin.Context)
	GetSyncStatus(c *gin.Context)
	GetSyncLogs(c *gin.Context)
	GetPendingConflicts(c *gin.Context)
	ResolveConflict(c *gin.Context)
}

// InitRouter 初始化路由配置
func InitRouter(engine *gin.Engine, handler APIHandler) *gin.RouterGroup {
	apiGroup := engine.Group("/api/v1")
	if handler != nil {
		syncGroup := apiGroup.Group("/sync")
		{
			syncGroup.POST("/trigger", handler.TriggerSync)
			syncGroup.GET("/status", handler.GetSyncStatus)
			syncGroup.GET("/logs", handler.GetSyncLogs)
			syncGroup.GET("/conflicts", handler.GetPendingConflicts)
			syncGroup.POST("/conflicts/:id/resolve", handler.ResolveConflict)
		}
		zap.S().Info("同步管理路由注册成功: /api/v1/sync")
	} else {
		zap.S().Warn("Handler为nil，路由未注册")
	}

	return apiGroup
}
