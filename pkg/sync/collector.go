package sync

import (
	"plant-edgesync/pkg/models"

	"go.uber.org/zap"
)

// Collector 按注册表清单采集待同步批次
type Collector struct {
	store MetadataStore
}

func NewCollector(store MetadataStore) *Collector {
	return &Collector{store: store}
}

// CollectPending 为每个注册表执行一次有界读取并组装批次
// 空表不产生批次；单表读取失败只记日志并跳过，采集继续
func (c *Collector) CollectPending(batchSize int) []SyncBatch {
	batches := make([]SyncBatch, 0, len(models.SyncTables))

	for _, table := range models.SyncTables {
		repo := c.store.Table(table.Name)
		if repo == nil {
			zap.S().Warnf("表 %s 未注册仓储，跳过", table.Name)
			continue
		}
		rows, err := repo.Pending(batchSize)
		if err != nil {
			zap.S().Errorf("查询表 %s 待同步数据失败: %v", table.Name, err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		records := make([]SyncRecord, 0, len(rows))
		for _, row := range rows {
			hash, err := ComputeHash(row)
			if err != nil {
				zap.S().Errorf("计算表 %s 记录 %d 哈希失败: %v", table.Name, row.Id(), err)
				continue
			}
			records = append(records, SyncRecord{
				Id:          row.Id(),
				Data:        row.Sanitized(),
				SyncVersion: row.Meta().SyncVersion,
				SyncHash:    hash,
				Operation:   row.Operation(),
			})
		}
		if len(records) == 0 {
			continue
		}
		batches = append(batches, SyncBatch{TableName: table.Name, Records: records})
	}

	return batches
}
