package server

import (
	"strconv"

	"plant-edgesync/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// TriggerSync 手动触发一次同步周期，同步执行并返回周期结果
// 已有周期在执行时返回 skipped 结果
func (h *Handler) TriggerSync(c *gin.Context) {
	outcome := h.service.TriggerSync(c.Request.Context())
	util.Ok(c, outcome)
}

// GetSyncStatus 聚合同步状态
func (h *Handler) GetSyncStatus(c *gin.Context) {
	cfg, err := h.service.SyncStatus()
	if err != nil {
		util.Err(c, err)
		return
	}

	resp := SyncStatusResponse{
		SiteId:         cfg.SiteId,
		SyncEnabled:    cfg.SyncEnabled,
		LastSyncStatus: cfg.LastSyncStatus,
	}
	if cfg.LastSyncTime != nil {
		resp.LastSyncTime = util.FormatTimePtr(cfg.LastSyncTime)
	}
	if cfg.LastErrorMessage != nil {
		resp.LastErrorMessage = *cfg.LastErrorMessage
	}
	if h.history != nil {
		resp.LastCycle = h.history.LastCycle()
		resp.RecentCycles = h.history.RecentCycles(10)
	}
	util.Ok(c, resp)
}

// GetSyncLogs 最近同步日志，limit 默认50，上限500
func (h *Handler) GetSyncLogs(c *gin.Context) {
	limit := cast.ToInt(util.GetParam(c, "limit"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	logs, err := h.service.SyncLogs(limit)
	if err != nil {
		util.Err(c, err)
		return
	}
	util.Ok(c, gin.H{"items": logs, "count": len(logs)})
}

// GetPendingConflicts 待处理冲突列表
func (h *Handler) GetPendingConflicts(c *gin.Context) {
	conflicts, err := h.service.PendingConflicts()
	if err != nil {
		util.Err(c, err)
		return
	}
	util.Ok(c, gin.H{"items": conflicts, "count": len(conflicts)})
}

// ResolveConflict 更新冲突行的解决字段
func (h *Handler) ResolveConflict(c *gin.Context) {
	conflictId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || conflictId <= 0 {
		util.Err(c, gin.H{"error": "无效的冲突ID", "code": 400})
		return
	}

	var req ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Err(c, gin.H{"error": errors.Wrap(err, "无效的请求体").Error(), "code": 400})
		return
	}

	if err := h.service.ResolveConflict(conflictId, req.Resolution, req.UserId, req.Note); err != nil {
		util.Err(c, err)
		return
	}
	util.Ok(c, gin.H{"conflictId": conflictId, "resolution": req.Resolution})
}
