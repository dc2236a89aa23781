package store

import (
	"sort"

	edgesync "plant-edgesync/pkg/sync"

	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

// 本地保留的周期历史上限，超出后淘汰最旧的
const maxCycleHistory = 100

// CycleRecord badger中的周期结果条目
type CycleRecord struct {
	StartedAtNano int64 `badgerhold:"key"` // StartedAt 的纳秒时间戳
	Outcome       edgesync.CycleOutcome
}

// CycleHistory 最近同步周期结果的本地留存
// 云端不可达时状态接口仍能给出最近几次周期的情况
type CycleHistory struct {
	store *BadgerStore
}

func NewCycleHistory(store *BadgerStore) *CycleHistory {
	return &CycleHistory{store: store}
}

// RecordOutcome 实现 sync.OutcomeSink，写入失败只记日志
func (h *CycleHistory) RecordOutcome(outcome edgesync.CycleOutcome) {
	if h.store == nil {
		return
	}
	key := outcome.StartedAt.UnixNano()
	record := CycleRecord{StartedAtNano: key, Outcome: outcome}
	if err := h.store.Upsert(key, &record); err != nil {
		zap.S().Warnf("保存周期历史失败: %v", err)
		return
	}
	h.prune()
}

// prune 淘汰保留窗口之外的旧条目
func (h *CycleHistory) prune() {
	records, err := h.all()
	if err != nil || len(records) <= maxCycleHistory {
		return
	}
	cutoff := records[maxCycleHistory-1].StartedAtNano
	if err := h.store.DeleteMatching(&CycleRecord{}, badgerhold.Where(badgerhold.Key).Lt(cutoff)); err != nil {
		zap.S().Debugf("清理周期历史失败: %v", err)
	}
}

// all 全部条目，按开始时间倒序
func (h *CycleHistory) all() ([]CycleRecord, error) {
	var records []CycleRecord
	if err := h.store.Find(&records, nil); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAtNano > records[j].StartedAtNano
	})
	return records, nil
}

// LastCycle 最近一次周期结果，没有历史时返回nil
func (h *CycleHistory) LastCycle() *edgesync.CycleOutcome {
	cycles := h.RecentCycles(1)
	if len(cycles) == 0 {
		return nil
	}
	return &cycles[0]
}

// RecentCycles 按时间倒序返回最近n次周期结果
func (h *CycleHistory) RecentCycles(n int) []edgesync.CycleOutcome {
	if h.store == nil || n <= 0 {
		return nil
	}
	records, err := h.all()
	if err != nil {
		zap.S().Debugf("读取周期历史失败: %v", err)
		return nil
	}
	if len(records) > n {
		records = records[:n]
	}
	outcomes := make([]edgesync.CycleOutcome, len(records))
	for i, r := range records {
		outcomes[i] = r.Outcome
	}
	return outcomes
}
