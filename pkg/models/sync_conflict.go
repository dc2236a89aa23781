package models

import "time"

const TableNameCloudSyncConflict = "cloud_sync_conflicts"

// 冲突解决状态（cloud_sync_conflicts.resolution）
const (
	ResolutionPending  = "pending"
	ResolutionUseEdge  = "use_edge"
	ResolutionUseCloud = "use_cloud"
	ResolutionManual   = "manual"
)

// 目前唯一的冲突类型：版本冲突
const ConflictTypeVersion = "version"

// CloudSyncConflict 版本冲突记录
// 由同步引擎创建，后续由运维工作流消费处理
type CloudSyncConflict struct {
	Id             int64      `json:"id" gorm:"column:id;primary_key"`
	SiteId         int64      `json:"siteId" gorm:"column:site_id"`
	TableName      string     `json:"tableName" gorm:"column:table_name"`
	RecordId       int64      `json:"recordId" gorm:"column:record_id"`
	EdgeData       string     `json:"edgeData" gorm:"column:edge_data"` // 边缘侧记录的JSON快照
	EdgeVersion    int        `json:"edgeVersion" gorm:"column:edge_version"`
	CloudVersion   int        `json:"cloudVersion" gorm:"column:cloud_version"`
	ConflictType   string     `json:"conflictType" gorm:"column:conflict_type"`
	Resolution     string     `json:"resolution" gorm:"column:resolution"`
	ResolvedBy     *int64     `json:"resolvedBy,omitempty" gorm:"column:resolved_by"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty" gorm:"column:resolved_at"`
	ResolutionNote string     `json:"resolutionNote,omitempty" gorm:"column:resolution_note"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"column:created_at"`
}
