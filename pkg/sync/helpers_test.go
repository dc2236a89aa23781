package sync

import (
	"context"
	"sort"
	stdsync "sync"
	"time"

	"plant-edgesync/pkg/models"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// fakeTable 内存表仓储，按与生产实现相同的契约筛选和排序
type fakeTable struct {
	mu         stdsync.Mutex
	siteId     int64
	rows       []Row
	pendingErr error
}

func (t *fakeTable) Pending(limit int) ([]Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pendingErr != nil {
		return nil, t.pendingErr
	}
	var selected []Row
	for _, row := range t.rows {
		status := cast.ToString(row[models.FieldSyncStatus])
		if cast.ToInt64(row[models.FieldSiteId]) != t.siteId {
			continue
		}
		if status != models.SyncStatusPending && status != models.SyncStatusFailed {
			continue
		}
		selected = append(selected, row)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return cast.ToTime(selected[i][models.FieldUpdatedAt]).Before(cast.ToTime(selected[j][models.FieldUpdatedAt]))
	})
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected, nil
}

func (t *fakeTable) Fetch(id int64) (Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range t.rows {
		if row.Id() == id {
			return row, nil
		}
	}
	return nil, errors.Errorf("记录 %d 不存在", id)
}

func (t *fakeTable) MarkSynced(ids []int64, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		for _, row := range t.rows {
			if row.Id() == id {
				row[models.FieldSyncStatus] = models.SyncStatusSynced
				row[models.FieldLastSyncAt] = at
			}
		}
	}
	return nil
}

func (t *fakeTable) MarkOldestSynced(n int, at time.Time) error {
	rows, err := t.Pending(n)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Id())
	}
	return t.MarkSynced(ids, at)
}

func (t *fakeTable) MarkFailed(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range t.rows {
		if row.Id() == id {
			row[models.FieldSyncStatus] = models.SyncStatusFailed
		}
	}
	return nil
}

func (t *fakeTable) statusOf(id int64) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range t.rows {
		if row.Id() == id {
			return cast.ToString(row[models.FieldSyncStatus])
		}
	}
	return ""
}

// fakeStore 内存元数据存取层
type fakeStore struct {
	mu        stdsync.Mutex
	config    *models.CloudSyncConfig
	configErr error
	statuses  []string
	lastError *string
	logs      []models.CloudSyncLog
	conflicts []models.CloudSyncConflict
	tables    map[string]*fakeTable
}

func newFakeStore(cfg *models.CloudSyncConfig) *fakeStore {
	return &fakeStore{
		config: cfg,
		tables: make(map[string]*fakeTable),
	}
}

func (s *fakeStore) table(name string) *fakeTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		t = &fakeTable{siteId: s.config.SiteId}
		s.tables[name] = t
	}
	return t
}

func (s *fakeStore) addRow(tableName string, row Row) {
	s.table(tableName).rows = append(s.table(tableName).rows, row)
}

func (s *fakeStore) LoadConfig() (*models.CloudSyncConfig, error) {
	if s.configErr != nil {
		return nil, s.configErr
	}
	return s.config, nil
}

func (s *fakeStore) UpdateSyncStatus(status string, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	s.lastError = errorMessage
	s.config.LastSyncStatus = status
	s.config.LastErrorMessage = errorMessage
	return nil
}

func (s *fakeStore) InsertLog(log *models.CloudSyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *log)
	return nil
}

func (s *fakeStore) RecentLogs(limit int) ([]models.CloudSyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.logs) > limit {
		return s.logs[len(s.logs)-limit:], nil
	}
	return s.logs, nil
}

func (s *fakeStore) InsertConflict(conflict *models.CloudSyncConflict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = append(s.conflicts, *conflict)
	return nil
}

func (s *fakeStore) PendingConflicts() ([]models.CloudSyncConflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []models.CloudSyncConflict
	for _, c := range s.conflicts {
		if c.Resolution == models.ResolutionPending {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func (s *fakeStore) ResolveConflict(conflictId int64, resolution string, userId *int64, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conflicts {
		if s.conflicts[i].Id == conflictId {
			s.conflicts[i].Resolution = resolution
			s.conflicts[i].ResolvedBy = userId
			s.conflicts[i].ResolutionNote = note
			return nil
		}
	}
	return errors.Errorf("冲突记录 %d 不存在", conflictId)
}

func (s *fakeStore) Table(name string) TableRepository {
	s.mu.Lock()
	_, ok := s.tables[name]
	s.mu.Unlock()
	if !ok {
		registered := false
		for _, t := range models.SyncTables {
			if t.Name == name {
				registered = true
				break
			}
		}
		if !registered {
			return nil
		}
	}
	return s.table(name)
}

// fakeTransport 可编程的推送实现
type fakeTransport struct {
	mu     stdsync.Mutex
	calls  int
	pushFn func(batches []SyncBatch) (*SyncResult, error)
}

func (t *fakeTransport) Push(_ context.Context, _ *models.CloudSyncConfig, batches []SyncBatch) (*SyncResult, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return t.pushFn(batches)
}

func (t *fakeTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func testConfig() *models.CloudSyncConfig {
	return &models.CloudSyncConfig{
		Id:           1,
		SiteId:       7,
		CloudApiUrl:  "http://cloud.example.com",
		ApiKey:       "test-key",
		SyncEnabled:  true,
		SyncInterval: 5,
		BatchSize:    100,
		RetryTimes:   1,
		RetryDelay:   1,
	}
}

func pendingRow(id int64, siteId int64, version int, updatedAt time.Time) Row {
	return Row{
		"id":                    id,
		models.FieldSiteId:      siteId,
		"quantity":              id * 10,
		models.FieldSyncStatus:  models.SyncStatusPending,
		models.FieldSyncVersion: version,
		models.FieldUpdatedAt:   updatedAt,
	}
}
