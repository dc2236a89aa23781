package sync

import (
	"context"
	"strings"
	"sync"
	"time"

	"plant-edgesync/pkg/models"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// 配置未指定或非法时的兜底同步间隔（分钟）
const defaultSyncIntervalMinutes = 5

// OutcomeSink 周期结果的消费方（事件发布、本地历史等）
// 失败由实现方自行记录，不影响同步周期
type OutcomeSink interface {
	RecordOutcome(outcome CycleOutcome)
}

// Orchestrator 云边同步编排器，每站点进程一个实例
// 持有缓存的同步配置和互斥的执行标志，负责完整的同步周期与调度
type Orchestrator struct {
	store     MetadataStore
	collector *Collector
	pusher    *Pusher
	recorder  *ConflictRecorder
	sinks     []OutcomeSink
	now       func() time.Time

	cfg *models.CloudSyncConfig

	mu      sync.Mutex
	running bool

	stopMu sync.Mutex
	cancel context.CancelFunc
	cron   *cron.Cron
}

func NewOrchestrator(store MetadataStore, transport Transport) *Orchestrator {
	return &Orchestrator{
		store:     store,
		collector: NewCollector(store),
		pusher:    NewPusher(transport),
		now:       time.Now,
	}
}

// AddOutcomeSink 注册周期结果消费方，需在 Start 之前调用
func (o *Orchestrator) AddOutcomeSink(sink OutcomeSink) {
	o.sinks = append(o.sinks, sink)
}

// LoadConfig 读取并缓存站点同步配置，配置缺失视为致命错误
func (o *Orchestrator) LoadConfig() (*models.CloudSyncConfig, error) {
	cfg, err := o.store.LoadConfig()
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	o.recorder = NewConflictRecorder(o.store, cfg.SiteId)
	return cfg, nil
}

// Start 启动同步服务：加载配置、立即执行一次、再按间隔或cron调度
// syncEnabled=false 时直接返回，不安排任何周期
func (o *Orchestrator) Start(ctx context.Context, cronExpr string) error {
	zap.S().Info("启动云边同步服务...")

	cfg, err := o.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "启动同步服务失败")
	}
	if !cfg.SyncEnabled {
		zap.S().Warn("同步服务已禁用")
		return nil
	}

	zap.S().Info("同步配置加载成功")
	zap.S().Infof("   站点ID: %d", cfg.SiteId)
	zap.S().Infof("   云端地址: %s", cfg.CloudApiUrl)
	zap.S().Infof("   同步间隔: %d分钟", cfg.SyncInterval)
	zap.S().Infof("   批量大小: %d", cfg.BatchSize)

	runCtx, cancel := context.WithCancel(ctx)
	o.stopMu.Lock()
	o.cancel = cancel
	o.stopMu.Unlock()

	o.PerformSync(runCtx)

	if strings.TrimSpace(cronExpr) != "" {
		if err := o.startCron(runCtx, cronExpr); err != nil {
			return err
		}
	} else {
		o.startTicker(runCtx)
	}

	zap.S().Info("同步服务已启动")
	return nil
}

// Stop 取消后续调度，幂等；不会中断正在执行的周期
func (o *Orchestrator) Stop() {
	o.stopMu.Lock()
	defer o.stopMu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.cron != nil {
		stopCtx := o.cron.Stop()
		<-stopCtx.Done()
		o.cron = nil
	}
	zap.S().Info("同步服务已停止")
}

func (o *Orchestrator) startTicker(ctx context.Context) {
	interval := o.cfg.SyncInterval
	if interval <= 0 {
		interval = defaultSyncIntervalMinutes
	}
	go func() {
		ticker := time.NewTicker(time.Duration(interval) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				o.PerformSync(ctx)
			case <-ctx.Done():
				zap.S().Info("同步调度循环已退出")
				return
			}
		}
	}()
}

// startCron 按cron表达式调度，支持5位和6位（带秒）格式
func (o *Orchestrator) startCron(ctx context.Context, expr string) error {
	expr = strings.TrimSpace(expr)
	parts := strings.Fields(expr)
	var c *cron.Cron
	switch len(parts) {
	case 6:
		c = cron.New(cron.WithSeconds())
	case 5:
		c = cron.New()
	default:
		return errors.Errorf("无效的 cron 表达式格式，应为5位或6位: %s", expr)
	}

	entryID, err := c.AddFunc(expr, func() {
		zap.S().Info("CRON 触发同步周期...")
		o.PerformSync(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "解析 CRON 表达式失败")
	}
	zap.S().Infof("CRON 任务已注册 (EntryID: %d, 表达式: %s)", entryID, expr)

	c.Start()
	o.stopMu.Lock()
	o.cron = c
	o.stopMu.Unlock()

	go func() {
		<-ctx.Done()
		o.stopMu.Lock()
		defer o.stopMu.Unlock()
		if o.cron != nil {
			stopCtx := o.cron.Stop()
			<-stopCtx.Done()
			o.cron = nil
			zap.S().Info("CRON 调度器已停止")
		}
	}()
	return nil
}

// TriggerSync 手动触发一次同步，与调度周期共用互斥保护
func (o *Orchestrator) TriggerSync(ctx context.Context) CycleOutcome {
	zap.S().Info("手动触发同步...")
	return o.PerformSync(ctx)
}

// PerformSync 执行一个同步周期
// 上一周期仍在执行时本次直接跳过（不排队、不报错）；互斥标志在所有路径上释放
func (o *Orchestrator) PerformSync(ctx context.Context) CycleOutcome {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		zap.S().Info("同步正在进行中，跳过本次执行")
		outcome := CycleOutcome{Status: CycleStatusSkipped, StartedAt: o.now()}
		if o.cfg != nil {
			outcome.SiteId = o.cfg.SiteId
		}
		return outcome
	}
	o.running = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	if o.cfg == nil {
		zap.S().Error("同步配置未加载")
		return CycleOutcome{Status: CycleStatusFailed, StartedAt: o.now(), ErrorMessage: "同步配置未加载"}
	}

	outcome := o.runCycle(ctx)
	for _, sink := range o.sinks {
		sink.RecordOutcome(outcome)
	}
	return outcome
}

// runCycle 周期主体：置running状态 → 采集 → 推送 → 应用结果 → 记日志
// 周期级失败收敛为 outcome，不向外传播
func (o *Orchestrator) runCycle(ctx context.Context) CycleOutcome {
	start := o.now()
	outcome := CycleOutcome{SiteId: o.cfg.SiteId, StartedAt: start}

	zap.S().Infof("开始同步 [%s]", start.Format("2006-01-02 15:04:05"))
	if err := o.store.UpdateSyncStatus(models.LastSyncStatusRunning, nil); err != nil {
		zap.S().Warnf("更新同步状态失败: %v", err)
	}

	batches := o.collector.CollectPending(o.cfg.BatchSize)
	if len(batches) == 0 {
		zap.S().Info("没有待同步的数据")
		if err := o.store.UpdateSyncStatus(models.LastSyncStatusSuccess, nil); err != nil {
			zap.S().Warnf("更新同步状态失败: %v", err)
		}
		outcome.Status = CycleStatusSuccess
		outcome.Duration = o.now().Sub(start)
		return outcome
	}

	outcome.Tables = len(batches)
	outcome.RecordsCount = lo.SumBy(batches, func(b SyncBatch) int { return len(b.Records) })
	zap.S().Info("待同步数据统计:")
	for _, batch := range batches {
		zap.S().Infof("   %s: %d 条记录", batch.TableName, len(batch.Records))
	}

	result, err := o.pusher.PushWithRetry(ctx, o.cfg, batches)
	if err != nil {
		return o.failCycle(outcome, start, err)
	}

	if err := o.applyResult(result, &outcome); err != nil {
		return o.failCycle(outcome, start, err)
	}

	// 聚合状态按各表失败数判定，任一表有失败即整体failed；
	// 细粒度结果保留在逐表日志里
	allOk := lo.EveryBy(result.Results, func(r TableResult) bool { return r.FailedCount == 0 })
	if allOk {
		outcome.Status = CycleStatusSuccess
		if err := o.store.UpdateSyncStatus(models.LastSyncStatusSuccess, nil); err != nil {
			zap.S().Warnf("更新同步状态失败: %v", err)
		}
	} else {
		outcome.Status = CycleStatusFailed
		msg := "部分数据同步失败"
		outcome.ErrorMessage = msg
		if err := o.store.UpdateSyncStatus(models.LastSyncStatusFailed, &msg); err != nil {
			zap.S().Warnf("更新同步状态失败: %v", err)
		}
	}

	outcome.Duration = o.now().Sub(start)
	o.logResult(batches, result, outcome.Duration)

	zap.S().Infof("同步完成，耗时: %.2f秒", outcome.Duration.Seconds())
	return outcome
}

// failCycle 周期级失败：置聚合状态、写合成all日志行、吞掉错误
func (o *Orchestrator) failCycle(outcome CycleOutcome, start time.Time, err error) CycleOutcome {
	zap.S().Errorf("同步失败: %v", err)
	msg := err.Error()
	if uerr := o.store.UpdateSyncStatus(models.LastSyncStatusFailed, &msg); uerr != nil {
		zap.S().Warnf("更新同步状态失败: %v", uerr)
	}
	if lerr := o.store.InsertLog(&models.CloudSyncLog{
		SiteId:       o.cfg.SiteId,
		SyncTime:     o.now(),
		TableName:    models.SyncLogTableAll,
		Status:       models.SyncLogStatusFailed,
		ErrorMessage: msg,
	}); lerr != nil {
		zap.S().Errorf("记录错误日志失败: %v", lerr)
	}
	outcome.Status = CycleStatusFailed
	outcome.ErrorMessage = msg
	outcome.Duration = o.now().Sub(start)
	return outcome
}

// applyResult 应用云端结果：确认成功记录、落盘冲突
// 失败计数的记录保持原状态，下一周期自然重选
func (o *Orchestrator) applyResult(result *SyncResult, outcome *CycleOutcome) error {
	syncedAt := o.now()
	for _, tableResult := range result.Results {
		repo := o.store.Table(tableResult.TableName)
		if repo == nil {
			zap.S().Warnf("云端返回未注册的表 %s，忽略", tableResult.TableName)
			continue
		}

		if tableResult.SuccessCount > 0 {
			// 优先使用云端明确返回的记录ID；计数回退仅兼容旧版云端
			var err error
			if len(tableResult.SyncedIds) > 0 {
				err = repo.MarkSynced(tableResult.SyncedIds, syncedAt)
			} else {
				err = repo.MarkOldestSynced(tableResult.SuccessCount, syncedAt)
			}
			if err != nil {
				return err
			}
			outcome.SuccessCount += tableResult.SuccessCount
			zap.S().Infof("   %s: %d 条记录同步成功", tableResult.TableName, tableResult.SuccessCount)
		}

		if len(tableResult.Conflicts) > 0 {
			zap.S().Warnf("   %s: %d 条记录存在冲突", tableResult.TableName, len(tableResult.Conflicts))
			for _, conflict := range tableResult.Conflicts {
				if err := o.recorder.Record(tableResult.TableName, conflict); err != nil {
					zap.S().Errorf("记录冲突失败 %s/%d: %v", tableResult.TableName, conflict.RecordId, err)
				}
			}
			outcome.ConflictCount += len(tableResult.Conflicts)
		}

		if tableResult.FailedCount > 0 {
			zap.S().Warnf("   %s: %d 条记录同步失败", tableResult.TableName, tableResult.FailedCount)
			outcome.FailedCount += tableResult.FailedCount
		}
	}
	return nil
}

// logResult 每个采集批次写一行日志，按表名与云端结果关联
func (o *Orchestrator) logResult(batches []SyncBatch, result *SyncResult, duration time.Duration) {
	for _, batch := range batches {
		tableResult, found := lo.Find(result.Results, func(r TableResult) bool {
			return r.TableName == batch.TableName
		})
		if !found {
			zap.S().Warnf("云端结果缺少表 %s，跳过日志", batch.TableName)
			continue
		}

		status := models.SyncLogStatusFailed
		if tableResult.FailedCount == 0 {
			status = models.SyncLogStatusSuccess
		} else if tableResult.SuccessCount > 0 {
			status = models.SyncLogStatusPartial
		}

		if err := o.store.InsertLog(&models.CloudSyncLog{
			SiteId:       o.cfg.SiteId,
			SyncTime:     o.now(),
			TableName:    batch.TableName,
			RecordsCount: len(batch.Records),
			SuccessCount: tableResult.SuccessCount,
			FailedCount:  tableResult.FailedCount,
			DurationMs:   duration.Milliseconds(),
			Status:       status,
		}); err != nil {
			zap.S().Errorf("写入同步日志失败 %s: %v", batch.TableName, err)
		}
	}
}

// SyncStatus 读取最新的聚合同步状态（直接查库，不用启动时的缓存）
func (o *Orchestrator) SyncStatus() (*models.CloudSyncConfig, error) {
	return o.store.LoadConfig()
}

// SyncLogs 最近的同步日志，按时间倒序
func (o *Orchestrator) SyncLogs(limit int) ([]models.CloudSyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return o.store.RecentLogs(limit)
}

// PendingConflicts 待处理冲突列表
func (o *Orchestrator) PendingConflicts() ([]models.CloudSyncConflict, error) {
	return o.store.PendingConflicts()
}

// ResolveConflict 更新冲突行的解决字段；业务记录的回写由调用方负责
func (o *Orchestrator) ResolveConflict(conflictId int64, resolution string, userId *int64, note string) error {
	switch resolution {
	case models.ResolutionUseEdge, models.ResolutionUseCloud, models.ResolutionManual:
	default:
		return errors.Errorf("无效的解决方式: %s", resolution)
	}
	if err := o.store.ResolveConflict(conflictId, resolution, userId, note); err != nil {
		return err
	}
	zap.S().Infof("冲突 #%d 已解决: %s", conflictId, resolution)
	return nil
}
