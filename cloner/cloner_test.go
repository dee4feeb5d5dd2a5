package cloner_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/cloner"
	"github.com/weehong/appwrite-database-cloner/cloner/schema"
	"github.com/weehong/appwrite-database-cloner/cloner/snapshot"
)

func instantPoll() schema.Poll {
	return schema.Poll{
		Interval: time.Millisecond,
		Attempts: 5,
		Sleep: func(_ context.Context, _ time.Duration) error {
			return nil
		},
	}
}

func testOptions(t *testing.T, mode cloner.Mode) *cloner.Options {
	t.Helper()

	return &cloner.Options{
		Mode:           mode,
		SourceDatabase: "src",
		DestDatabase:   "dst",
		PageSize:       100,
		SnapshotPath:   filepath.Join(t.TempDir(), "snapshot.json"),
		AttributePoll:  instantPoll(),
		IndexPoll:      instantPoll(),
	}
}

func sourceDoc(id, name, email string) appwrite.Document {
	return appwrite.Document{
		"$id":           id,
		"$collectionId": "users",
		"$databaseId":   "src",
		"$createdAt":    "2026-08-01T00:00:00.000+00:00",
		"$updatedAt":    "2026-08-01T00:00:00.000+00:00",
		"$permissions":  []any{`read("any")`},
		"$sequence":     float64(1),
		"name":          name,
		"email":         email,
	}
}

// newSourceInstance builds a source with a users collection (two attributes,
// one index, three documents) and an empty posts collection.
func newSourceInstance() *mockInstance {
	source := newMockInstance("src", "Production")
	source.addCollection("users", "Users",
		sourceDoc("u-1", "alice", "a@example.com"),
		sourceDoc("u-2", "bob", "b@example.com"),
		sourceDoc("u-3", "carol", "c@example.com"),
	)
	source.addCollection("posts", "Posts")

	source.attrs["users"] = []appwrite.Attribute{
		{Key: "name", Type: appwrite.KindString, Status: appwrite.StatusAvailable, Size: 128},
		{Key: "email", Type: appwrite.KindString, Format: appwrite.KindEmail,
			Status: appwrite.StatusAvailable},
	}
	source.indexes["users"] = []appwrite.Index{
		{Key: "by_email", Type: "unique", Status: appwrite.StatusAvailable,
			Attributes: []string{"email"}},
	}

	return source
}

func TestRunFull(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()

	dest := newMockInstance("dst", "Staging")
	dest.addCollection("stale", "Stale")

	opts := testOptions(t, cloner.ModeFull)

	var phases []string

	cl := cloner.New(source, dest, opts)
	cl.SetObserver(cloner.Observer{
		OnPhase: func(phase string) { phases = append(phases, phase) },
	})

	res, err := cl.Run(t.Context())
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Equal(t, []string{
		cloner.PhaseClean,
		cloner.PhaseStructure,
		cloner.PhaseFetch,
		cloner.PhaseWrite,
	}, phases)

	// the leftover destination collection is gone, the source ones exist
	assert.Equal(t, []string{"stale"}, dest.deleted)
	require.Len(t, dest.collections, 2)
	assert.Equal(t, "users", dest.collections[0].ID)
	assert.Equal(t, "posts", dest.collections[1].ID)

	assert.Len(t, dest.attrs["users"], 2)
	assert.Len(t, dest.indexes["users"], 1)

	// every source document lands once, stripped of metadata, under a fresh
	// identifier, with the source permissions carried over
	require.Len(t, dest.written, 3)
	assert.Equal(t, 3, res.DocumentsWritten())

	sourceIDs := map[string]struct{}{"u-1": {}, "u-2": {}, "u-3": {}}

	for _, w := range dest.written {
		assert.Equal(t, "users", w.CollectionID)
		assert.NotContains(t, sourceIDs, w.DocumentID, "identifier must be newly assigned")
		assert.Equal(t, []string{`read("any")`}, w.Permissions)

		for key := range w.Data {
			assert.NotEqual(t, byte('$'), key[0], "metadata must not be replayed")
		}
	}

	assert.Equal(t, map[string]any{"name": "alice", "email": "a@example.com"},
		dest.written[0].Data)

	// the intermediate snapshot is consumed
	assert.False(t, snapshot.Exists(opts.SnapshotPath))
}

func TestRunStructureOnly(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()
	dest := newMockInstance("dst", "Staging")

	opts := testOptions(t, cloner.ModeStructureOnly)

	var phases []string

	cl := cloner.New(source, dest, opts)
	cl.SetObserver(cloner.Observer{
		OnPhase: func(phase string) { phases = append(phases, phase) },
	})

	res, err := cl.Run(t.Context())
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Equal(t, []string{cloner.PhaseClean, cloner.PhaseStructure}, phases)
	assert.Len(t, dest.collections, 2)
	assert.Empty(t, dest.written)
	assert.False(t, snapshot.Exists(opts.SnapshotPath), "no snapshot without a data phase")
}

func TestRunDataOnly(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()

	dest := newMockInstance("dst", "Staging")
	dest.addCollection("users", "Users")
	dest.addCollection("posts", "Posts")

	opts := testOptions(t, cloner.ModeDataOnly)

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Empty(t, dest.deleted, "data mode never cleans")
	assert.Empty(t, dest.attrs, "data mode never replays schemas")
	assert.Equal(t, 3, res.DocumentsWritten())
}

func TestRunMissingOnly(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()

	dest := newMockInstance("dst", "Staging")
	dest.addCollection("users", "Users",
		appwrite.Document{"$id": "d-1", "name": "alice", "email": "a@example.com"},
		appwrite.Document{"$id": "d-2", "name": "bob", "email": "b@example.com"},
	)
	dest.addCollection("posts", "Posts")

	opts := testOptions(t, cloner.ModeMissingOnly)
	opts.UniqueKeys = map[string]string{"users": "email"}

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Empty(t, dest.deleted)
	assert.Equal(t, 1, res.DocumentsWritten())
	assert.Equal(t, 2, res.DocumentsSkipped())

	require.Len(t, dest.written, 1)
	assert.Equal(t, "c@example.com", dest.written[0].Data["email"])

	// a second pass finds everything present and inserts nothing
	res, err = cloner.New(source, dest, testOptionsLike(t, opts)).Run(t.Context())
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Equal(t, 0, res.DocumentsWritten())
	assert.Equal(t, 3, res.DocumentsSkipped())
	assert.Len(t, dest.written, 1, "no duplicate inserts on re-run")
}

// testOptionsLike clones run options with a fresh snapshot path.
func testOptionsLike(t *testing.T, opts *cloner.Options) *cloner.Options {
	t.Helper()

	clone := *opts
	clone.SnapshotPath = filepath.Join(t.TempDir(), "snapshot.json")

	return &clone
}

func TestRunFetchFailureIsPerCollection(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()
	source.documents["posts"] = []appwrite.Document{
		{"$id": "p-1", "title": "hello"},
	}
	source.listDocumentsErr = map[string]error{"users": errBoom}

	dest := newMockInstance("dst", "Staging")

	opts := testOptions(t, cloner.ModeFull)

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.NoError(t, err, "a per-collection fetch failure does not abort the run")
	require.True(t, res.Failed())

	require.Len(t, res.Collections, 2)
	assert.ErrorIs(t, res.Collections[0].Err, errBoom)
	assert.Zero(t, res.Collections[0].DocumentsWritten)

	assert.False(t, res.Collections[1].Failed())
	assert.Equal(t, 1, res.Collections[1].DocumentsWritten)
}

func TestRunDocumentWriteFailureIsRecorded(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()

	dest := newMockInstance("dst", "Staging")
	dest.createDocErrOn = map[string]error{"bob": errBoom}

	opts := testOptions(t, cloner.ModeFull)

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.NoError(t, err)
	require.True(t, res.Failed())

	assert.Equal(t, 2, res.DocumentsWritten())
	assert.Equal(t, 1, res.DocumentErrors())

	users := res.Collections[0]
	require.Len(t, users.DocumentErrors, 1)
	assert.Equal(t, "u-2", users.DocumentErrors[0].SourceID)
	assert.ErrorIs(t, users.DocumentErrors[0].Err, errBoom)
}

func TestRunSkipsDocumentsOfFailedStructure(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()

	dest := newMockInstance("dst", "Staging")
	dest.createCollBlocked = map[string]error{"users": errBoom}

	opts := testOptions(t, cloner.ModeFull)

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.NoError(t, err)
	require.True(t, res.Failed())

	users := res.Collections[0]
	require.NotNil(t, users.Structure)
	assert.True(t, users.Structure.Failed())
	assert.Zero(t, users.DocumentsWritten, "no writes into a missing collection")
	assert.Empty(t, dest.written)
}

func TestRunUnresolvableDatabase(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()
	dest := newMockInstance("other", "Other")

	opts := testOptions(t, cloner.ModeFull)

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, appwrite.ErrNotFound)
	assert.Contains(t, err.Error(), "resolve destination database")
}

func TestRunDeleteFailureAborts(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()

	dest := newMockInstance("dst", "Staging")
	dest.addCollection("stale", "Stale")
	dest.deleteErr = errBoom

	opts := testOptions(t, cloner.ModeFull)

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "clean destination")
}

func TestRunResume(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()
	// a fetch would fail; only the snapshot can supply documents
	source.listDocumentsErr = map[string]error{"users": errBoom, "posts": errBoom}

	dest := newMockInstance("dst", "Staging")
	dest.addCollection("users", "Users")
	dest.addCollection("posts", "Posts")

	opts := testOptions(t, cloner.ModeDataOnly)
	opts.Resume = true

	require.NoError(t, snapshot.Write(opts.SnapshotPath, &snapshot.Snapshot{
		SourceID:  "src",
		DestID:    "dst",
		FetchedAt: time.Now().UTC(),
		Collections: []snapshot.CollectionDocs{
			{
				CollectionID:   "users",
				CollectionName: "Users",
				DocumentCount:  1,
				Documents: []appwrite.Document{
					sourceDoc("u-9", "dave", "d@example.com"),
				},
			},
		},
	}))

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.NoError(t, err)
	require.False(t, res.Failed())

	assert.Equal(t, 1, res.DocumentsWritten())
	assert.Equal(t, "dave", dest.written[0].Data["name"])
	assert.False(t, snapshot.Exists(opts.SnapshotPath), "consumed on success")
}

func TestRunResumeRejectsForeignSnapshot(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()

	dest := newMockInstance("dst", "Staging")
	dest.addCollection("users", "Users")
	dest.addCollection("posts", "Posts")

	opts := testOptions(t, cloner.ModeDataOnly)
	opts.Resume = true

	require.NoError(t, snapshot.Write(opts.SnapshotPath, &snapshot.Snapshot{
		SourceID: "some-other-db",
		DestID:   "dst",
	}))

	res, err := cloner.New(source, dest, opts).Run(t.Context())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "different replication pair")
}

func TestRunIncludeExclude(t *testing.T) {
	t.Parallel()

	source := newSourceInstance()
	dest := newMockInstance("dst", "Staging")

	opts := testOptions(t, cloner.ModeStructureOnly)
	opts.Include = []string{"Users"}

	cl := cloner.New(source, dest, opts)

	res, err := cl.Run(t.Context())
	require.NoError(t, err)

	require.Len(t, res.Collections, 1)
	assert.Equal(t, "users", res.Collections[0].ID)
	require.Len(t, dest.collections, 1)
}
