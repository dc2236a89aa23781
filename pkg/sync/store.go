package sync

import (
	"time"

	"plant-edgesync/pkg/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// TableRepository 单个业务表的同步访问能力
// 每个注册表各持有一个实例，表名在构造时绑定一次，查询方法不再拼接标识符
type TableRepository interface {
	// Pending 读取待同步记录：本站点且状态为 pending/failed，按 updated_at 升序，最多 limit 条
	Pending(limit int) ([]Row, error)
	// Fetch 按主键读取单条记录
	Fetch(id int64) (Row, error)
	// MarkSynced 按云端确认的ID集合标记为已同步
	MarkSynced(ids []int64, at time.Time) error
	// MarkOldestSynced 旧版云端不返回ID时的回退：把最旧的N条 pending 标记为已同步
	MarkOldestSynced(n int, at time.Time) error
	// MarkFailed 冲突降级：记录状态置为 failed
	MarkFailed(id int64) error
}

// MetadataStore 同步元数据的存取契约
// 引擎所有数据库访问都经由这一层
type MetadataStore interface {
	LoadConfig() (*models.CloudSyncConfig, error)
	UpdateSyncStatus(status string, errorMessage *string) error
	InsertLog(log *models.CloudSyncLog) error
	RecentLogs(limit int) ([]models.CloudSyncLog, error)
	InsertConflict(conflict *models.CloudSyncConflict) error
	PendingConflicts() ([]models.CloudSyncConflict, error)
	ResolveConflict(conflictId int64, resolution string, userId *int64, note string) error
	Table(name string) TableRepository
}

type gormStore struct {
	db     *gorm.DB
	siteId int64
	tables map[string]TableRepository
}

// NewStore 创建 gorm 实现的元数据存取层
// 表仓储按注册表清单预先构建，未注册的表不可访问
func NewStore(db *gorm.DB, siteId int64) MetadataStore {
	s := &gormStore{
		db:     db,
		siteId: siteId,
		tables: make(map[string]TableRepository, len(models.SyncTables)),
	}
	for _, t := range models.SyncTables {
		s.tables[t.Name] = &gormTableRepository{db: db, tableName: t.Name, siteId: siteId}
	}
	return s
}

func (s *gormStore) LoadConfig() (*models.CloudSyncConfig, error) {
	var cfg models.CloudSyncConfig
	err := s.db.Table(models.TableNameCloudSyncConfig).
		Where("site_id = ?", s.siteId).
		Limit(1).
		Take(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Errorf("站点 %d 的同步配置不存在", s.siteId)
	}
	if err != nil {
		return nil, errors.Wrap(err, "读取同步配置失败")
	}
	return &cfg, nil
}

// UpdateSyncStatus 更新聚合同步状态，last-write-wins
// 每站点只有一个编排器实例写本行，无需乐观锁
func (s *gormStore) UpdateSyncStatus(status string, errorMessage *string) error {
	err := s.db.Table(models.TableNameCloudSyncConfig).
		Where("site_id = ?", s.siteId).
		Updates(map[string]interface{}{
			"last_sync_time":     time.Now(),
			"last_sync_status":   status,
			"last_error_message": errorMessage,
		}).Error
	return errors.Wrap(err, "更新同步状态失败")
}

func (s *gormStore) InsertLog(log *models.CloudSyncLog) error {
	return errors.Wrap(s.db.Create(log).Error, "写入同步日志失败")
}

func (s *gormStore) RecentLogs(limit int) ([]models.CloudSyncLog, error) {
	var logs []models.CloudSyncLog
	err := s.db.Table(models.TableNameCloudSyncLog).
		Where("site_id = ?", s.siteId).
		Order("sync_time DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, errors.Wrap(err, "查询同步日志失败")
}

func (s *gormStore) InsertConflict(conflict *models.CloudSyncConflict) error {
	return errors.Wrap(s.db.Create(conflict).Error, "写入冲突记录失败")
}

func (s *gormStore) PendingConflicts() ([]models.CloudSyncConflict, error) {
	var conflicts []models.CloudSyncConflict
	err := s.db.Table(models.TableNameCloudSyncConflict).
		Where("site_id = ? AND resolution = ?", s.siteId, models.ResolutionPending).
		Order("created_at DESC").
		Find(&conflicts).Error
	return conflicts, errors.Wrap(err, "查询待处理冲突失败")
}

// ResolveConflict 更新冲突行的解决字段，不回写业务记录
func (s *gormStore) ResolveConflict(conflictId int64, resolution string, userId *int64, note string) error {
	now := time.Now()
	result := s.db.Table(models.TableNameCloudSyncConflict).
		Where("id = ?", conflictId).
		Updates(map[string]interface{}{
			"resolution":      resolution,
			"resolved_by":     userId,
			"resolved_at":     now,
			"resolution_note": note,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "更新冲突记录失败")
	}
	if result.RowsAffected == 0 {
		return errors.Errorf("冲突记录 %d 不存在", conflictId)
	}
	return nil
}

func (s *gormStore) Table(name string) TableRepository {
	return s.tables[name]
}

// gormTableRepository 共享实现，按表名各绑定一个实例
type gormTableRepository struct {
	db        *gorm.DB
	tableName string
	siteId    int64
}

func (r *gormTableRepository) Pending(limit int) ([]Row, error) {
	var rows []map[string]interface{}
	err := r.db.Table(r.tableName).
		Where("site_id = ? AND sync_status IN ?", r.siteId, []string{models.SyncStatusPending, models.SyncStatusFailed}).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "查询表 %s 待同步记录失败", r.tableName)
	}
	result := make([]Row, len(rows))
	for i, row := range rows {
		result[i] = Row(row)
	}
	return result, nil
}

func (r *gormTableRepository) Fetch(id int64) (Row, error) {
	var row map[string]interface{}
	err := r.db.Table(r.tableName).
		Where("id = ?", id).
		Limit(1).
		Take(&row).Error
	if err != nil {
		return nil, errors.Wrapf(err, "读取表 %s 记录 %d 失败", r.tableName, id)
	}
	return Row(row), nil
}

func (r *gormTableRepository) MarkSynced(ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.Table(r.tableName).
		Where("site_id = ? AND id IN ?", r.siteId, ids).
		Updates(map[string]interface{}{
			models.FieldSyncStatus: models.SyncStatusSynced,
			models.FieldLastSyncAt: at,
		}).Error
	return errors.Wrapf(err, "表 %s 标记已同步失败", r.tableName)
}

// MarkOldestSynced 与采集使用同一排序，使被标记的记录尽可能就是被推送的那批
func (r *gormTableRepository) MarkOldestSynced(n int, at time.Time) error {
	if n <= 0 {
		return nil
	}
	var ids []int64
	err := r.db.Table(r.tableName).
		Where("site_id = ? AND sync_status IN ?", r.siteId, []string{models.SyncStatusPending, models.SyncStatusFailed}).
		Order("updated_at ASC").
		Limit(n).
		Pluck("id", &ids).Error
	if err != nil {
		return errors.Wrapf(err, "表 %s 查询待标记记录失败", r.tableName)
	}
	return r.MarkSynced(ids, at)
}

func (r *gormTableRepository) MarkFailed(id int64) error {
	err := r.db.Table(r.tableName).
		Where("id = ?", id).
		Update(models.FieldSyncStatus, models.SyncStatusFailed).Error
	return errors.Wrapf(err, "表 %s 标记失败状态失败", r.tableName)
}
