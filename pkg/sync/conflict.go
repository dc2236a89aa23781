package sync

import (
	"encoding/json"
	"time"

	"plant-edgesync/pkg/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ConflictRecorder 落盘云端上报的版本冲突并降级源记录状态
type ConflictRecorder struct {
	store  MetadataStore
	siteId int64
}

func NewConflictRecorder(store MetadataStore, siteId int64) *ConflictRecorder {
	return &ConflictRecorder{store: store, siteId: siteId}
}

// Record 写入一条冲突记录，附带边缘侧记录快照，并把源记录置为 failed
// 冲突记录不能停留在 pending（会原样重发）也不能是 synced（会掩盖分歧），
// failed 是等待外部裁决的持有状态
func (r *ConflictRecorder) Record(tableName string, conflict Conflict) error {
	snapshot := "{}"
	repo := r.store.Table(tableName)
	if repo == nil {
		return errors.Errorf("表 %s 未注册仓储", tableName)
	}
	row, err := repo.Fetch(conflict.RecordId)
	if err != nil {
		zap.S().Warnf("读取冲突记录快照失败 %s/%d: %v", tableName, conflict.RecordId, err)
	} else if data, err := json.Marshal(row); err == nil {
		snapshot = string(data)
	}

	edgeVersion := conflict.EdgeVersion
	if edgeVersion == 0 && row != nil {
		edgeVersion = row.Meta().SyncVersion
	}

	if err := r.store.InsertConflict(&models.CloudSyncConflict{
		SiteId:       r.siteId,
		TableName:    tableName,
		RecordId:     conflict.RecordId,
		EdgeData:     snapshot,
		EdgeVersion:  edgeVersion,
		CloudVersion: conflict.CloudVersion,
		ConflictType: models.ConflictTypeVersion,
		Resolution:   models.ResolutionPending,
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}

	return repo.MarkFailed(conflict.RecordId)
}
