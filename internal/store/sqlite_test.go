package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSaveAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	params := map[string]any{"regions": "counties.shp", "policy": "border"}
	summary := map[string]any{"regions": 3109, "links": 18474}

	run, err := s.SaveRun(ctx, "neighbors", params, summary)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "neighbors", run.Command)
	assert.Contains(t, run.Params, "counties.shp")
	assert.Contains(t, run.Summary, "18474")

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, run.Command, runs[0].Command)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, cmd := range []string{"match", "neighbors", "match"} {
		run, err := s.SaveRun(ctx, cmd, nil, nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i := 1; i < len(runs); i++ {
		assert.False(t, runs[i-1].CreatedAt.Before(runs[i].CreatedAt))
	}
	// All three made it back out.
	got := map[string]bool{}
	for _, r := range runs {
		got[r.ID] = true
	}
	for _, id := range ids {
		assert.True(t, got[id])
	}
}

func TestListRunsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for n := 0; n < 5; n++ {
		_, err := s.SaveRun(ctx, "match", nil, nil)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Non-positive limit falls back to the default.
	runs, err = s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestListRunsEmpty(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSaveRunUnmarshalableParams(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SaveRun(context.Background(), "match", func() {}, nil)
	assert.Error(t, err)
}
