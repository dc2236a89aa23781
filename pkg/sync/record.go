package sync

import (
	"plant-edgesync/pkg/models"

	"github.com/spf13/cast"
)

// Row 以列名为键的业务记录，由表仓储从数据库读出
// 同步簿记字段与业务负载共存于同一行，通过 Meta/Sanitized 分离
type Row map[string]interface{}

// Id 记录主键
func (r Row) Id() int64 {
	return cast.ToInt64(r["id"])
}

// Meta 提取同步簿记字段
// sync_version 缺失或为0时按1处理（新建记录）
func (r Row) Meta() models.SyncMeta {
	meta := models.SyncMeta{
		SyncStatus:  cast.ToString(r[models.FieldSyncStatus]),
		SyncVersion: cast.ToInt(r[models.FieldSyncVersion]),
		SyncHash:    cast.ToString(r[models.FieldSyncHash]),
	}
	if meta.SyncVersion == 0 {
		meta.SyncVersion = 1
	}
	if t, err := cast.ToTimeE(r[models.FieldLastSyncAt]); err == nil && !t.IsZero() {
		meta.LastSyncAt = &t
	}
	return meta
}

// Sanitized 返回剥离簿记字段后的负载副本，原行不变
func (r Row) Sanitized() Row {
	clean := make(Row, len(r))
	for k, v := range r {
		clean[k] = v
	}
	for _, field := range models.MetaFieldNames() {
		delete(clean, field)
	}
	return clean
}

// Operation 根据版本号判定上报操作类型
func (r Row) Operation() string {
	if r.Meta().SyncVersion == 1 {
		return OperationInsert
	}
	return OperationUpdate
}
