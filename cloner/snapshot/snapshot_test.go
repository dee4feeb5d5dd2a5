package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/cloner/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		SourceID:  "db-src",
		DestID:    "db-dst",
		FetchedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Collections: []snapshot.CollectionDocs{
			{
				CollectionID:   "users",
				CollectionName: "Users",
				DocumentCount:  2,
				Documents: []appwrite.Document{
					{"$id": "u-1", "name": "alice", "age": float64(30)},
					{"$id": "u-2", "name": "bob", "tags": []any{"a", "b"}},
				},
			},
			{
				CollectionID:   "empty",
				CollectionName: "Empty",
			},
		},
	}
}

func TestWriteRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json")

	s := testSnapshot()
	require.NoError(t, snapshot.Write(path, s))

	got, err := snapshot.Read(path)
	require.NoError(t, err)

	assert.Equal(t, s, got)
	assert.Positive(t, snapshot.Size(path))
}

func TestWriteReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json")

	first := testSnapshot()
	require.NoError(t, snapshot.Write(path, first))

	second := testSnapshot()
	second.SourceID = "db-other"
	require.NoError(t, snapshot.Write(path, second))

	got, err := snapshot.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "db-other", got.SourceID)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	require.NoError(t, snapshot.Write(path, testSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot.json", entries[0].Name())
}

func TestReadMissing(t *testing.T) {
	t.Parallel()

	_, err := snapshot.Read(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestReadCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))

	_, err := snapshot.Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snapshot")
}

func TestExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json")

	assert.False(t, snapshot.Exists(path))

	require.NoError(t, snapshot.Write(path, testSnapshot()))
	assert.True(t, snapshot.Exists(path))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, snapshot.Write(path, testSnapshot()))

	require.NoError(t, snapshot.Delete(path))
	assert.False(t, snapshot.Exists(path))

	// deleting again is not an error
	require.NoError(t, snapshot.Delete(path))
}

func TestSizeMissing(t *testing.T) {
	t.Parallel()

	assert.Zero(t, snapshot.Size(filepath.Join(t.TempDir(), "absent.json")))
}
