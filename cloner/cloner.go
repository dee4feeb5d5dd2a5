/*
Package cloner orchestrates the replication of a hierarchical document
database from a source instance to a destination instance.

The pipeline is strictly sequential: one remote call is outstanding at a
time, respecting the service's rate limits and the create-then-poll ordering
that dependent schema objects require. Per-entity failures are accumulated
into the Result, never thrown; only configuration and not-found conditions
abort a run.
*/
package cloner

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/cloner/diff"
	"github.com/weehong/appwrite-database-cloner/cloner/sanitize"
	"github.com/weehong/appwrite-database-cloner/cloner/schema"
	"github.com/weehong/appwrite-database-cloner/cloner/snapshot"
	"github.com/weehong/appwrite-database-cloner/errors"
	"github.com/weehong/appwrite-database-cloner/log"
	"github.com/weehong/appwrite-database-cloner/metrics"
)

// API is the remote surface the orchestrator consumes on each side.
// *appwrite.Client implements it.
type API interface {
	GetDatabase(ctx context.Context, dbID string) (*appwrite.Database, error)

	ListCollections(ctx context.Context, dbID string,
		queries ...appwrite.Query) (*appwrite.CollectionList, error)
	ListAttributes(ctx context.Context, dbID, collID string,
		queries ...appwrite.Query) (*appwrite.AttributeList, error)
	ListIndexes(ctx context.Context, dbID, collID string,
		queries ...appwrite.Query) (*appwrite.IndexList, error)
	ListDocuments(ctx context.Context, dbID, collID string,
		queries ...appwrite.Query) (*appwrite.DocumentList, error)

	CreateCollection(ctx context.Context, dbID string,
		col *appwrite.Collection) (*appwrite.Collection, error)
	CreateAttribute(ctx context.Context, dbID, collID string, attr *appwrite.Attribute) error
	CreateIndex(ctx context.Context, dbID, collID string, idx *appwrite.Index) error
	CreateDocument(ctx context.Context, dbID, collID, docID string,
		data map[string]any, permissions []string) error

	DeleteCollection(ctx context.Context, dbID, collID string) error
}

// Options is the immutable run configuration, constructed up front and
// passed in. The orchestrator keeps no ambient state.
type Options struct {
	Mode Mode

	SourceDatabase string
	DestDatabase   string

	PageSize int

	// UniqueKeys maps collection id to the unique-identifier field used by
	// the incremental diff.
	UniqueKeys map[string]string

	Include []string
	Exclude []string

	SnapshotPath string
	Resume       bool

	AttributePoll schema.Poll
	IndexPoll     schema.Poll
}

// Cloner runs the replication pipeline.
type Cloner struct {
	source API
	dest   API

	options *Options
	filter  Filter

	observer Observer
}

// New creates a Cloner for the given source and destination.
func New(source, dest API, opts *Options) *Cloner {
	return &Cloner{
		source:   source,
		dest:     dest,
		options:  opts,
		filter:   MakeFilter(opts.Include, opts.Exclude),
		observer: Observer{}.normalized(),
	}
}

// SetObserver installs progress callbacks. Must be called before Run.
func (c *Cloner) SetObserver(obs Observer) {
	c.observer = obs.normalized()
}

// Run executes the pipeline for the configured mode and returns the
// aggregated result. The returned error is reserved for conditions that
// abort the whole run (unresolvable databases, destructive clean failure,
// snapshot I/O); per-entity failures live on the Result.
func (c *Cloner) Run(ctx context.Context) (*Result, error) {
	lg := log.New("cloner").With(log.Mode(string(c.options.Mode)))
	ctx = lg.WithContext(ctx)

	sourceDB, err := c.source.GetDatabase(ctx, c.options.SourceDatabase)
	if err != nil {
		return nil, errors.Wrap(err, "resolve source database")
	}

	destDB, err := c.dest.GetDatabase(ctx, c.options.DestDatabase)
	if err != nil {
		return nil, errors.Wrap(err, "resolve destination database")
	}

	lg.Infof("Replicating database %q (%s) to %q (%s)",
		sourceDB.Name, sourceDB.ID, destDB.Name, destDB.ID)

	collections, err := c.listSourceCollections(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list source collections")
	}

	lg.With(log.Count(int64(len(collections)))).
		Infof("Found %d collections to replicate", len(collections))

	res := &Result{
		Mode:      c.options.Mode,
		StartedAt: time.Now(),
	}

	for i := range collections {
		res.Collections = append(res.Collections, &CollectionResult{
			ID:   collections[i].ID,
			Name: collections[i].Name,
		})
	}

	if c.options.Mode.Destructive() {
		err = c.cleanDestination(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "clean destination")
		}
	}

	if c.options.Mode.ReplicateStructure() {
		c.replicateStructure(ctx, collections, res)
	}

	if c.options.Mode.ReplicateData() {
		err = c.replicateData(ctx, collections, res)
		if err != nil {
			return nil, err
		}
	}

	res.FinishedAt = time.Now()

	lg.With(log.Elapsed(res.FinishedAt.Sub(res.StartedAt))).
		Infof("Replication finished in %s",
			res.FinishedAt.Sub(res.StartedAt).Round(time.Second))

	return res, nil
}

func (c *Cloner) listSourceCollections(ctx context.Context) ([]appwrite.Collection, error) {
	lg := log.Ctx(ctx)

	all, err := appwrite.FetchAll(ctx, c.options.PageSize,
		func(col appwrite.Collection) string { return col.ID },
		func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Collection, error) {
			list, err := c.source.ListCollections(ctx, c.options.SourceDatabase, queries...)
			if err != nil {
				return nil, err
			}

			return list.Collections, nil
		})
	if err != nil {
		return nil, err
	}

	filtered := make([]appwrite.Collection, 0, len(all))

	for i := range all {
		if !c.filter(&all[i]) {
			lg.With(log.Collection(all[i].ID, all[i].Name)).
				Infof("Collection %q excluded", all[i].Name)

			continue
		}

		filtered = append(filtered, all[i])
	}

	return filtered, nil
}

// cleanDestination deletes every existing destination collection. Full and
// structure-only replication assume a clean destination.
func (c *Cloner) cleanDestination(ctx context.Context) error {
	lg := log.Ctx(ctx)

	c.observer.OnPhase(PhaseClean)

	existing, err := appwrite.FetchAll(ctx, c.options.PageSize,
		func(col appwrite.Collection) string { return col.ID },
		func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Collection, error) {
			list, err := c.dest.ListCollections(ctx, c.options.DestDatabase, queries...)
			if err != nil {
				return nil, err
			}

			return list.Collections, nil
		})
	if err != nil {
		return errors.Wrap(err, "list destination collections")
	}

	for i := range existing {
		err = c.dest.DeleteCollection(ctx, c.options.DestDatabase, existing[i].ID)
		if err != nil {
			return errors.Wrapf(err, "delete collection %q", existing[i].ID)
		}

		lg.With(log.Collection(existing[i].ID, existing[i].Name)).
			Infof("Deleted destination collection %q", existing[i].Name)
	}

	if len(existing) != 0 {
		lg.With(log.Count(int64(len(existing)))).
			Infof("Destination cleaned: %d collections deleted", len(existing))
	}

	return nil
}

func (c *Cloner) replicateStructure(
	ctx context.Context,
	collections []appwrite.Collection,
	res *Result,
) {
	c.observer.OnPhase(PhaseStructure)

	rep := schema.NewReplicator(
		c.source, c.dest,
		c.options.SourceDatabase, c.options.DestDatabase,
		c.options.PageSize,
		c.options.AttributePoll, c.options.IndexPoll,
	)

	for i := range collections {
		col := &collections[i]

		sr := rep.ReplicateCollection(ctx, col)
		res.collection(col.ID).Structure = sr

		metrics.AddAttributesCreated(sr.AttributesCreated)
		metrics.AddIndexesCreated(sr.IndexesCreated)

		if sr.Failed() {
			metrics.AddCollectionError()
		} else {
			metrics.AddCollectionReplicated()
		}
	}
}

func (c *Cloner) replicateData(
	ctx context.Context,
	collections []appwrite.Collection,
	res *Result,
) error {
	lg := log.Ctx(ctx)

	path := c.options.SnapshotPath

	// Fetch phase, unless resuming from a leftover snapshot.
	if c.options.Resume && snapshot.Exists(path) {
		snap, err := snapshot.Read(path)
		if err != nil {
			return err
		}

		if snap.SourceID != c.options.SourceDatabase || snap.DestID != c.options.DestDatabase {
			return errors.Errorf("snapshot %q belongs to a different replication pair (%s -> %s)",
				path, snap.SourceID, snap.DestID)
		}

		lg.Infof("Resuming from snapshot %q fetched at %s",
			path, snap.FetchedAt.Format(time.RFC3339))
	} else {
		if snapshot.Exists(path) {
			lg.Warnf("Overwriting leftover snapshot %q (use --resume to consume it)", path)
		}

		err := c.fetchToSnapshot(ctx, collections, res)
		if err != nil {
			return err
		}
	}

	// Write phase reads the snapshot back from durable storage. The fetch
	// and write phases stay decoupled: a crash below leaves the snapshot as
	// a resume checkpoint.
	snap, err := snapshot.Read(path)
	if err != nil {
		return err
	}

	c.observer.OnPhase(PhaseWrite)

	for i := range snap.Collections {
		c.writeCollection(ctx, &snap.Collections[i], res)
	}

	err = snapshot.Delete(path)
	if err != nil {
		return err
	}

	lg.Debugf("Snapshot %q deleted", path)

	return nil
}

func (c *Cloner) fetchToSnapshot(
	ctx context.Context,
	collections []appwrite.Collection,
	res *Result,
) error {
	lg := log.Ctx(ctx)

	c.observer.OnPhase(PhaseFetch)

	snap := &snapshot.Snapshot{
		SourceID:  c.options.SourceDatabase,
		DestID:    c.options.DestDatabase,
		FetchedAt: time.Now().UTC(),
	}

	for i := range collections {
		col := &collections[i]
		cr := res.collection(col.ID)

		docs, err := appwrite.FetchAll(ctx, c.options.PageSize,
			func(d appwrite.Document) string { return d.ID() },
			func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Document, error) {
				list, err := c.source.ListDocuments(ctx,
					c.options.SourceDatabase, col.ID, queries...)
				if err != nil {
					return nil, err
				}

				return list.Documents, nil
			})
		if err != nil {
			cr.Err = errors.Wrap(err, "fetch documents")
			lg.With(log.Collection(col.ID, col.Name)).
				Errorf(err, "Failed to fetch documents for %q", col.Name)

			continue
		}

		cr.DocumentsFetched = len(docs)

		snap.Collections = append(snap.Collections, snapshot.CollectionDocs{
			CollectionID:   col.ID,
			CollectionName: col.Name,
			DocumentCount:  len(docs),
			Documents:      docs,
		})

		lg.With(log.Collection(col.ID, col.Name), log.Count(int64(len(docs)))).
			Infof("Fetched %s documents from %q", humanize.Comma(int64(len(docs))), col.Name)
	}

	err := snapshot.Write(c.options.SnapshotPath, snap)
	if err != nil {
		return err
	}

	size := snapshot.Size(c.options.SnapshotPath)
	metrics.SetSnapshotSizeBytes(size)

	lg.With(log.Size(size)).
		Infof("Snapshot written to %q (%s)", c.options.SnapshotPath, humanize.Bytes(size))

	return nil
}

func (c *Cloner) writeCollection(
	ctx context.Context,
	docs *snapshot.CollectionDocs,
	res *Result,
) {
	lg := log.Ctx(ctx).With(log.Collection(docs.CollectionID, docs.CollectionName))

	cr := res.collection(docs.CollectionID)
	if cr == nil {
		// resumed snapshot may contain a collection that no longer exists
		// on the source listing
		cr = &CollectionResult{ID: docs.CollectionID, Name: docs.CollectionName}
		res.Collections = append(res.Collections, cr)
	}

	if cr.Structure != nil && cr.Structure.Failed() {
		lg.Warnf("Skipping documents for %q: structure replication failed",
			docs.CollectionName)

		return
	}

	queue := docs.Documents

	if c.options.Mode.Incremental() {
		existing, err := appwrite.FetchAll(ctx, c.options.PageSize,
			func(d appwrite.Document) string { return d.ID() },
			func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Document, error) {
				list, err := c.dest.ListDocuments(ctx,
					c.options.DestDatabase, docs.CollectionID, queries...)
				if err != nil {
					return nil, err
				}

				return list.Documents, nil
			})
		if err != nil {
			cr.Err = errors.Wrap(err, "list destination documents")
			lg.Errorf(err, "Failed to build existence index for %q", docs.CollectionName)

			return
		}

		idx := diff.BuildIndex(existing, c.options.UniqueKeys[docs.CollectionID])

		var skipped int

		queue, skipped = idx.Missing(queue)
		cr.DocumentsSkipped = skipped
		metrics.AddDocumentsSkipped(skipped)

		lg.With(log.Count(int64(skipped))).
			Infof("Collection %q: %d documents already present, %d missing",
				docs.CollectionName, skipped, len(queue))
	}

	c.observer.OnWriteStart(docs.CollectionName, len(queue))

	for _, doc := range queue {
		data := sanitize.Clean(doc)
		docID := uuid.NewString()

		err := c.dest.CreateDocument(ctx,
			c.options.DestDatabase, docs.CollectionID, docID, data, doc.Permissions())

		c.observer.OnDocumentDone()

		if err != nil {
			cr.DocumentErrors = append(cr.DocumentErrors, DocumentError{
				SourceID: doc.ID(),
				Err:      err,
			})
			metrics.AddDocumentError()
			lg.With(log.Doc(doc.ID())).Errorf(err, "Failed to write document")

			continue
		}

		cr.DocumentsWritten++
		metrics.AddDocumentWritten()
	}

	lg.With(log.Count(int64(cr.DocumentsWritten))).
		Infof("Collection %q: %d documents written, %d skipped, %d failed",
			docs.CollectionName, cr.DocumentsWritten, cr.DocumentsSkipped,
			len(cr.DocumentErrors))
}
