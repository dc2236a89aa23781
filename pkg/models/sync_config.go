package models

import "time"

const TableNameCloudSyncConfig = "cloud_sync_config"

// 聚合同步状态（cloud_sync_config.last_sync_status）
const (
	LastSyncStatusRunning = "running"
	LastSyncStatusSuccess = "success"
	LastSyncStatusFailed  = "failed"
)

// CloudSyncConfig 站点同步配置，每个边缘站点一行
// 编排器启动时读取一次并缓存，云端可能带外修改
type CloudSyncConfig struct {
	Id               int64      `json:"id" gorm:"column:id;primary_key"`
	SiteId           int64      `json:"siteId" gorm:"column:site_id"`                 // 边缘站点ID
	CloudApiUrl      string     `json:"cloudApiUrl" gorm:"column:cloud_api_url"`      // 云端推送地址
	ApiKey           string     `json:"-" gorm:"column:api_key"`                      // 推送凭证
	SyncEnabled      bool       `json:"syncEnabled" gorm:"column:sync_enabled"`       // 关闭时不调度
	SyncInterval     int        `json:"syncInterval" gorm:"column:sync_interval"`     // 同步间隔（分钟）
	BatchSize        int        `json:"batchSize" gorm:"column:batch_size"`           // 单表单批上限
	RetryTimes       int        `json:"retryTimes" gorm:"column:retry_times"`         // 推送重试次数
	RetryDelay       int        `json:"retryDelay" gorm:"column:retry_delay"`         // 重试基础延迟（秒），线性退避
	LastSyncTime     *time.Time `json:"lastSyncTime" gorm:"column:last_sync_time"`
	LastSyncStatus   string     `json:"lastSyncStatus" gorm:"column:last_sync_status"`
	LastErrorMessage *string    `json:"lastErrorMessage" gorm:"column:last_error_message"`
}

func (*CloudSyncConfig) TableName() string {
	return TableNameCloudSyncConfig
}
