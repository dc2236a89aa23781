package sync

import "time"

// 记录操作类型：sync_version == 1 视为 insert，否则 update
const (
	OperationInsert = "insert"
	OperationUpdate = "update"
)

// SyncRecord 单条待同步记录的上报形态
type SyncRecord struct {
	Id          int64  `json:"id"`
	Data        Row    `json:"data"` // 剥离簿记字段后的业务负载
	SyncVersion int    `json:"syncVersion"`
	SyncHash    string `json:"syncHash"`
	Operation   string `json:"operation"`
}

// SyncBatch 单表一批待同步记录，按 updated_at 升序
type SyncBatch struct {
	TableName string       `json:"tableName"`
	Records   []SyncRecord `json:"records"`
}

// PushRequest 推送到云端的请求体
type PushRequest struct {
	SiteId    int64       `json:"siteId"`
	ApiKey    string      `json:"apiKey"`
	SyncBatch []SyncBatch `json:"syncBatch"`
	Timestamp string      `json:"timestamp"`
}

// Conflict 云端上报的版本冲突
type Conflict struct {
	RecordId     int64  `json:"recordId"`
	Reason       string `json:"reason"`
	CloudVersion int    `json:"cloudVersion,omitempty"`
	EdgeVersion  int    `json:"edgeVersion,omitempty"`
}

// TableResult 云端返回的单表处理结果
// SyncedIds 为云端确认成功的记录ID；旧版云端不返回时按"最旧N条"回退处理
type TableResult struct {
	TableName    string     `json:"tableName"`
	SuccessCount int        `json:"successCount"`
	FailedCount  int        `json:"failedCount"`
	SyncedIds    []int64    `json:"syncedIds,omitempty"`
	Conflicts    []Conflict `json:"conflicts,omitempty"`
}

// SyncResult 云端推送响应
type SyncResult struct {
	Success      bool          `json:"success"`
	Results      []TableResult `json:"results"`
	NextSyncTime string        `json:"nextSyncTime,omitempty"`
}

// 周期结果状态
const (
	CycleStatusSuccess = "success"
	CycleStatusFailed  = "failed"
	CycleStatusSkipped = "skipped" // 上一周期仍在执行，本次被互斥跳过
)

// CycleOutcome 一次同步周期的结构化结果
// 周期内的任何失败都收敛到这里，不向调度循环抛出
type CycleOutcome struct {
	SiteId        int64         `json:"siteId"`
	Status        string        `json:"status"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
	Tables        int           `json:"tables"`
	RecordsCount  int           `json:"recordsCount"`
	SuccessCount  int           `json:"successCount"`
	FailedCount   int           `json:"failedCount"`
	ConflictCount int           `json:"conflictCount"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
}
