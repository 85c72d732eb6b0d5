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
	s, err := Open(filepath.Join(t.TempDir(), "driftsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDatabase(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("synchronous", "1")) // NORMAL
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driftsync.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var version int
	require.NoError(t, s2.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestSnapshot_LoadMissingKeyIsEmpty(t *testing.T) {
	s := openTestStore(t)

	vars, err := s.LoadSnapshot(context.Background(), "cloudvars/unknown")
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestSnapshot_SaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{
		"score": "12",
		"name":  "zed",
	}, 1))

	vars, err := s.LoadSnapshot(ctx, "cloudvars/s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"score": "12", "name": "zed"}, vars)
}

func TestSnapshot_SaveReplacesPrevious(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{"score": "1"}, 1))
	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{"score": "2"}, 2))

	vars, err := s.LoadSnapshot(ctx, "cloudvars/s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"score": "2"}, vars)
}

func TestSnapshot_HistoryRecordsDiffsOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{
		"score": "1",
		"name":  "zed",
	}, 1))
	// Only score changes; name must not get a second history row.
	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{
		"score": "2",
		"name":  "zed",
	}, 2))
	// Nothing changes; no rows at all.
	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{
		"score": "2",
		"name":  "zed",
	}, 3))

	updates, err := s.UpdateHistory(ctx, "cloudvars/s1")
	require.NoError(t, err)
	assert.Equal(t, []Update{
		{Seq: 1, Name: "name", Value: "zed"},
		{Seq: 1, Name: "score", Value: "1"},
		{Seq: 2, Name: "score", Value: "2"},
	}, updates)
}

func TestSnapshot_KeysAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/a", map[string]string{"score": "1"}, 1))
	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/b", map[string]string{"score": "9"}, 2))

	vars, err := s.LoadSnapshot(ctx, "cloudvars/a")
	require.NoError(t, err)
	assert.Equal(t, "1", vars["score"])

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cloudvars/a", "cloudvars/b"}, keys)
}

func TestLatestSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seq, err := s.LatestSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq, "empty store starts at zero")

	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{"score": "1"}, 5))
	require.NoError(t, s.SaveSnapshot(ctx, "cloudvars/s2", map[string]string{"score": "2"}, 9))

	seq, err = s.LatestSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), seq)
}

func TestSnapshot_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driftsync.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveSnapshot(ctx, "cloudvars/s1", map[string]string{"score": "42"}, 1))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	vars, err := s2.LoadSnapshot(ctx, "cloudvars/s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"score": "42"}, vars)
}

func TestBind_StampsSequenceFromClock(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seq int64
	bound := s.Bind(ctx, func() int64 { seq++; return seq })

	require.NoError(t, bound.Save("cloudvars/s1", map[string]string{"score": "1"}))
	require.NoError(t, bound.Save("cloudvars/s1", map[string]string{"score": "2"}))

	updates, err := s.UpdateHistory(ctx, "cloudvars/s1")
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(1), updates[0].Seq)
	assert.Equal(t, int64(2), updates[1].Seq)

	vars, err := bound.Load("cloudvars/s1")
	require.NoError(t, err)
	assert.Equal(t, "2", vars["score"])
}
