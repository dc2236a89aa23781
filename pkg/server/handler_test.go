package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plant-edgesync/pkg/models"
	edgesync "plant-edgesync/pkg/sync"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncService struct {
	triggered  int
	status     *models.CloudSyncConfig
	logs       []models.CloudSyncLog
	conflicts  []models.CloudSyncConflict
	resolved   map[int64]string
	resolveErr error
}

func (f *fakeSyncService) TriggerSync(context.Context) edgesync.CycleOutcome {
	f.triggered++
	return edgesync.CycleOutcome{SiteId: 7, Status: edgesync.CycleStatusSuccess}
}

func (f *fakeSyncService) SyncStatus() (*models.CloudSyncConfig, error) {
	if f.status == nil {
		return nil, errors.New("站点 7 的同步配置不存在")
	}
	return f.status, nil
}

func (f *fakeSyncService) SyncLogs(limit int) ([]models.CloudSyncLog, error) {
	if len(f.logs) > limit {
		return f.logs[:limit], nil
	}
	return f.logs, nil
}

func (f *fakeSyncService) PendingConflicts() ([]models.CloudSyncConflict, error) {
	return f.conflicts, nil
}

func (f *fakeSyncService) ResolveConflict(conflictId int64, resolution string, _ *int64, _ string) error {
	if f.resolveErr != nil {
		return f.resolveErr
	}
	if f.resolved == nil {
		f.resolved = make(map[int64]string)
	}
	f.resolved[conflictId] = resolution
	return nil
}

func newTestRouter(service SyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	InitRouter(engine, NewHandler(service, nil))
	return engine
}

func TestTriggerSyncEndpoint(t *testing.T) {
	service := &fakeSyncService{}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, service.triggered)
	assert.Contains(t, w.Body.String(), edgesync.CycleStatusSuccess)
}

func TestGetSyncStatusEndpoint(t *testing.T) {
	now := time.Now()
	msg := "部分数据同步失败"
	service := &fakeSyncService{status: &models.CloudSyncConfig{
		SiteId:           7,
		SyncEnabled:      true,
		LastSyncTime:     &now,
		LastSyncStatus:   models.LastSyncStatusFailed,
		LastErrorMessage: &msg,
	}}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"siteId":7`)
	assert.Contains(t, w.Body.String(), models.LastSyncStatusFailed)
	assert.Contains(t, w.Body.String(), msg)
}

func TestGetSyncLogsEndpoint(t *testing.T) {
	service := &fakeSyncService{logs: []models.CloudSyncLog{
		{SiteId: 7, TableName: "orders", RecordsCount: 3, Status: models.SyncLogStatusSuccess},
	}}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs?limit=10", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), "orders")
}

func TestResolveConflictEndpoint(t *testing.T) {
	service := &fakeSyncService{}
	router := newTestRouter(service)

	body, _ := json.Marshal(ResolveConflictRequest{Resolution: models.ResolutionUseEdge, Note: "以边缘数据为准"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/conflicts/5/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ResolutionUseEdge, service.resolved[5])
}

func TestResolveConflictBadId(t *testing.T) {
	service := &fakeSyncService{}
	router := newTestRouter(service)

	body, _ := json.Marshal(ResolveConflictRequest{Resolution: models.ResolutionManual})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/conflicts/abc/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, len(service.resolved))
}

func TestResolveConflictMissingResolution(t *testing.T) {
	service := &fakeSyncService{}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/conflicts/5/resolve", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
