package models

// 同步表优先级
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// SyncTable 参与同步的业务表及其描述性元数据
// priority/realtime 目前仅作标注，不影响周期内的处理顺序
type SyncTable struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Realtime bool   `json:"realtime"`
}

// SyncTables 参与云边同步的业务表清单，采集时按此顺序处理
var SyncTables = []SyncTable{
	{Name: "orders", Priority: PriorityHigh, Realtime: true},
	{Name: "tasks", Priority: PriorityHigh, Realtime: true},
	{Name: "production_batches", Priority: PriorityHigh, Realtime: false},
	{Name: "batching_records", Priority: PriorityHigh, Realtime: false},
	{Name: "quality_tests", Priority: PriorityMedium, Realtime: false},
	{Name: "slump_tests", Priority: PriorityMedium, Realtime: false},
	{Name: "strength_tests", Priority: PriorityMedium, Realtime: false},
	{Name: "equipment_metrics", Priority: PriorityLow, Realtime: false},
	{Name: "material_transactions", Priority: PriorityMedium, Realtime: false},
	{Name: "billing_records", Priority: PriorityMedium, Realtime: false},
	{Name: "alarms", Priority: PriorityMedium, Realtime: false},
	{Name: "daily_production_stats", Priority: PriorityLow, Realtime: false},
	{Name: "equipment_daily_stats", Priority: PriorityLow, Realtime: false},
}
