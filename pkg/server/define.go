package server

import (
	"context"

	"plant-edgesync/pkg/models"
	edgesync "plant-edgesync/pkg/sync"
)

// SyncService 管理接口依赖的同步服务能力，由编排器实现
type SyncService interface {
	TriggerSync(ctx context.Context) edgesync.CycleOutcome
	SyncStatus() (*models.CloudSyncConfig, error)
	SyncLogs(limit int) ([]models.CloudSyncLog, error)
	PendingConflicts() ([]models.CloudSyncConflict, error)
	ResolveConflict(conflictId int64, resolution string, userId *int64, note string) error
}

// CycleHistory 本地周期历史的只读访问
type CycleHistory interface {
	LastCycle() *edgesync.CycleOutcome
	RecentCycles(n int) []edgesync.CycleOutcome
}

// Handler 同步管理API处理器
type Handler struct {
	service SyncService
	history CycleHistory
}

func NewHandler(service SyncService, history CycleHistory) *Handler {
	return &Handler{service: service, history: history}
}

// SyncStatusResponse 状态接口响应：配置表里的聚合状态加上本地周期历史
type SyncStatusResponse struct {
	SiteId           int64                   `json:"siteId"`
	SyncEnabled      bool                    `json:"syncEnabled"`
	LastSyncTime     string                  `json:"lastSyncTime,omitempty"`
	LastSyncStatus   string                  `json:"lastSyncStatus,omitempty"`
	LastErrorMessage string                  `json:"lastErrorMessage,omitempty"`
	LastCycle        *edgesync.CycleOutcome  `json:"lastCycle,omitempty"`
	RecentCycles     []edgesync.CycleOutcome `json:"recentCycles,omitempty"`
}

// ResolveConflictRequest 冲突解决请求体
type ResolveConflictRequest struct {
	Resolution string `json:"resolution" binding:"required"`
	UserId     *int64 `json:"userId,omitempty"`
	Note       string `json:"note,omitempty"`
}
