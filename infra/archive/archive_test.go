package archive

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

func TestRecentNewestFirst(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "reports", "reports.jsonl"), 1, 2, 0, false)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, a.Append(ctx, Entry{
			ArchivedAt: base.Add(time.Duration(i) * time.Hour),
			Report:     &optimizer.Report{ID: id, HorizonDays: 7},
		}))
	}

	got, err := a.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r3", got[0].Report.ID)
	assert.Equal(t, "r2", got[1].Report.ID)

	e, ok, err := a.Find(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, e.Report.HorizonDays)

	_, ok, err = a.Find(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotify(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "reports.jsonl"), 1, 2, 0, false)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	ctx := context.Background()

	require.NoError(t, a.Notify(ctx, nil, nil))
	recs := []model.Recommendation{{ID: "rec-1", Status: model.StatusPending}}
	require.NoError(t, a.Notify(ctx, &optimizer.Report{ID: "r1"}, recs))

	got, err := a.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].ArchivedAt.IsZero())
	require.Len(t, got[0].Recommendations, 1)
	assert.Equal(t, "rec-1", got[0].Recommendations[0].ID)
}

func TestRecentReadsRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports.jsonl")
	a, err := New(path, 1, 3, 0, false)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	ctx := context.Background()

	narrative := strings.Repeat("x", 10*1024)
	const n = 150
	for i := 0; i < n; i++ {
		rec := model.Recommendation{ID: "rec"}
		rec.Narrative = narrative
		require.NoError(t, a.Notify(ctx, &optimizer.Report{ID: "r"}, []model.Recommendation{rec}))
	}

	backups, err := filepath.Glob(filepath.Join(dir, "reports-*.jsonl"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups)

	got, err := a.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestRecentWithoutFile(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "reports.jsonl"), 1, 1, 0, false)
	require.NoError(t, err)
	got, err := a.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
