package sync

import (
	"testing"
	"time"

	"plant-edgesync/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHashDeterministic(t *testing.T) {
	row := Row{"id": int64(1), "quantity": 10, "grade": "C30"}

	h1, err := ComputeHash(row)
	require.NoError(t, err)
	h2, err := ComputeHash(row)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // SHA-256 hex
}

func TestComputeHashIgnoresSyncFields(t *testing.T) {
	base := Row{"id": int64(1), "quantity": 10}
	baseHash, err := ComputeHash(base)
	require.NoError(t, err)

	now := time.Now()
	decorated := Row{
		"id":                    int64(1),
		"quantity":              10,
		models.FieldSyncStatus:  models.SyncStatusSynced,
		models.FieldSyncVersion: 5,
		models.FieldLastSyncAt:  now,
		models.FieldSyncHash:    "stale",
	}
	decoratedHash, err := ComputeHash(decorated)
	require.NoError(t, err)

	assert.Equal(t, baseHash, decoratedHash)
}

func TestComputeHashChangesWithContent(t *testing.T) {
	h1, err := ComputeHash(Row{"id": int64(1), "quantity": 10})
	require.NoError(t, err)
	h2, err := ComputeHash(Row{"id": int64(1), "quantity": 11})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestRowSanitizedKeepsOriginal(t *testing.T) {
	row := Row{
		"id":                   int64(1),
		models.FieldSyncStatus: models.SyncStatusPending,
	}
	clean := row.Sanitized()

	assert.NotContains(t, clean, models.FieldSyncStatus)
	assert.Contains(t, row, models.FieldSyncStatus, "原行不应被修改")
}

func TestRowOperation(t *testing.T) {
	insert := Row{"id": int64(1), models.FieldSyncVersion: 1}
	update := Row{"id": int64(1), models.FieldSyncVersion: 3}
	missing := Row{"id": int64(1)}

	assert.Equal(t, OperationInsert, insert.Operation())
	assert.Equal(t, OperationUpdate, update.Operation())
	assert.Equal(t, OperationInsert, missing.Operation(), "缺失版本按新建处理")
}

func TestRowMeta(t *testing.T) {
	now := time.Now()
	row := Row{
		models.FieldSyncStatus:  models.SyncStatusFailed,
		models.FieldSyncVersion: 4,
		models.FieldLastSyncAt:  now,
		models.FieldSyncHash:    "abc",
	}
	meta := row.Meta()

	assert.Equal(t, models.SyncStatusFailed, meta.SyncStatus)
	assert.Equal(t, 4, meta.SyncVersion)
	assert.Equal(t, "abc", meta.SyncHash)
	if assert.NotNil(t, meta.LastSyncAt) {
		assert.WithinDuration(t, now, *meta.LastSyncAt, time.Second)
	}
}
