package models

import "time"

// 同步状态字段名（业务表内的同步簿记列）
const (
	FieldSyncStatus  = "sync_status"
	FieldSyncVersion = "sync_version"
	FieldLastSyncAt  = "last_sync_at"
	FieldSyncHash    = "sync_hash"
	FieldSiteId      = "site_id"
	FieldUpdatedAt   = "updated_at"
)

// 记录级同步状态
const (
	SyncStatusPending = "pending" // 待同步（创建/更新后）
	SyncStatusSynced  = "synced"  // 云端已确认
	SyncStatusFailed  = "failed"  // 同步失败或存在冲突
)

// SyncMeta 业务表中的同步簿记字段
// 计算哈希和上报数据时需要整体剥离这组字段
type SyncMeta struct {
	SyncStatus  string     `json:"syncStatus" gorm:"column:sync_status"`
	SyncVersion int        `json:"syncVersion" gorm:"column:sync_version"` // 从1开始，1表示insert，否则update
	LastSyncAt  *time.Time `json:"lastSyncAt" gorm:"column:last_sync_at"`
	SyncHash    string     `json:"syncHash" gorm:"column:sync_hash"`
}

// MetaFieldNames 返回需要从负载中剥离的簿记字段名
func MetaFieldNames() []string {
	return []string{FieldSyncStatus, FieldSyncVersion, FieldLastSyncAt, FieldSyncHash}
}
