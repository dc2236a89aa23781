package models

import "time"

const TableNameCloudSyncLog = "cloud_sync_logs"

// 单表同步结果状态（cloud_sync_logs.status）
const (
	SyncLogStatusSuccess = "success"
	SyncLogStatusPartial = "partial"
	SyncLogStatusFailed  = "failed"
)

// 周期级异常时写入的合成表名
const SyncLogTableAll = "all"

// CloudSyncLog 同步日志，追加写，每周期每表一行
type CloudSyncLog struct {
	Id           int64     `json:"id" gorm:"column:id;primary_key"`
	SiteId       int64     `json:"siteId" gorm:"column:site_id"`
	SyncTime     time.Time `json:"syncTime" gorm:"column:sync_time"`
	TableName    string    `json:"tableName" gorm:"column:table_name"`
	RecordsCount int       `json:"recordsCount" gorm:"column:records_count"` // 本批尝试的记录数
	SuccessCount int       `json:"successCount" gorm:"column:success_count"`
	FailedCount  int       `json:"failedCount" gorm:"column:failed_count"`
	DurationMs   int64     `json:"durationMs" gorm:"column:duration_ms"` // 整个周期的耗时
	Status       string    `json:"status" gorm:"column:status"`
	ErrorMessage string    `json:"errorMessage,omitempty" gorm:"column:error_message"`
}
