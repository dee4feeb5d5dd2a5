// Package schema reproduces one collection's full schema on the destination,
// preserving create-then-poll ordering so dependent objects are never
// submitted before their prerequisites exist.
package schema

import (
	"context"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/errors"
	"github.com/weehong/appwrite-database-cloner/log"
)

// SourceAPI is the source-side surface the replicator reads from.
type SourceAPI interface {
	ListAttributes(ctx context.Context, dbID, collID string,
		queries ...appwrite.Query) (*appwrite.AttributeList, error)
	ListIndexes(ctx context.Context, dbID, collID string,
		queries ...appwrite.Query) (*appwrite.IndexList, error)
}

// DestAPI is the destination-side surface the replicator writes to and polls.
type DestAPI interface {
	CreateCollection(ctx context.Context, dbID string,
		col *appwrite.Collection) (*appwrite.Collection, error)
	CreateAttribute(ctx context.Context, dbID, collID string, attr *appwrite.Attribute) error
	CreateIndex(ctx context.Context, dbID, collID string, idx *appwrite.Index) error
	ListAttributes(ctx context.Context, dbID, collID string,
		queries ...appwrite.Query) (*appwrite.AttributeList, error)
	ListIndexes(ctx context.Context, dbID, collID string,
		queries ...appwrite.Query) (*appwrite.IndexList, error)
}

// EntityError records a per-attribute or per-index failure.
type EntityError struct {
	Key string
	Err error
}

// Result is the outcome of replicating one collection's structure.
type Result struct {
	CollectionID   string
	CollectionName string

	// Created reports whether the destination collection shell was created.
	Created bool

	AttributesCreated int
	IndexesCreated    int

	AttributeErrors []EntityError
	IndexErrors     []EntityError

	// Err is set when the collection replication as a whole failed: the
	// shell creation failed, the source schema could not be enumerated, or
	// an attribute creation call was rejected.
	Err error
}

// Failed reports whether the collection's structure replication failed.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Replicator replays source collection schemas on the destination.
type Replicator struct {
	source SourceAPI
	dest   DestAPI

	sourceDB string
	destDB   string

	pageSize int

	attrPoll  Poll
	indexPoll Poll
}

// NewReplicator creates a schema replicator between two databases.
func NewReplicator(
	source SourceAPI, dest DestAPI,
	sourceDB, destDB string,
	pageSize int,
	attrPoll, indexPoll Poll,
) *Replicator {
	return &Replicator{
		source:    source,
		dest:      dest,
		sourceDB:  sourceDB,
		destDB:    destDB,
		pageSize:  pageSize,
		attrPoll:  attrPoll,
		indexPoll: indexPoll,
	}
}

// ReplicateCollection creates the destination collection shell and replays
// the source collection's attributes and indexes in source order, polling
// each created entity to availability before submitting the next. It never
// returns an error: every failure is recorded on the Result.
func (r *Replicator) ReplicateCollection(
	ctx context.Context,
	col *appwrite.Collection,
) *Result {
	lg := log.Ctx(ctx).With(log.Collection(col.ID, col.Name))

	res := &Result{
		CollectionID:   col.ID,
		CollectionName: col.Name,
	}

	_, err := r.dest.CreateCollection(ctx, r.destDB, col)
	if err != nil {
		res.Err = errors.Wrap(err, "create collection")
		lg.Errorf(err, "Failed to create collection %q", col.ID)

		return res
	}

	res.Created = true
	lg.Infof("Collection %q created", col.Name)

	unavailable := r.replicateAttributes(ctx, col, res)
	if res.Err != nil {
		return res
	}

	r.replicateIndexes(ctx, col, res, unavailable)

	return res
}

// replicateAttributes replays the source attributes strictly sequentially:
// the destination rejects dependent operations on attributes still
// processing. It returns the set of attribute keys that never became
// available.
func (r *Replicator) replicateAttributes(
	ctx context.Context,
	col *appwrite.Collection,
	res *Result,
) map[string]struct{} {
	lg := log.Ctx(ctx).With(log.Collection(col.ID, col.Name))

	attrs, err := appwrite.FetchAll(ctx, r.pageSize,
		func(a appwrite.Attribute) string { return a.Key },
		func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Attribute, error) {
			list, err := r.source.ListAttributes(ctx, r.sourceDB, col.ID, queries...)
			if err != nil {
				return nil, err
			}

			return list.Attributes, nil
		})
	if err != nil {
		res.Err = errors.Wrap(err, "list source attributes")

		return nil
	}

	unavailable := make(map[string]struct{})

	for i := range attrs {
		attr := &attrs[i]

		if attr.IsChildRelationship() {
			lg.With(log.Attr(attr.Key)).
				Debugf("Skipping child-side relationship attribute %q", attr.Key)

			continue
		}

		err := r.dest.CreateAttribute(ctx, r.destDB, col.ID, attr)
		if err != nil {
			// a missing attribute corrupts data integrity for every
			// subsequent document write
			res.AttributeErrors = append(res.AttributeErrors, EntityError{attr.Key, err})
			res.Err = errors.Wrapf(err, "attribute %q", attr.Key)
			lg.With(log.Attr(attr.Key)).Errorf(err, "Failed to create attribute %q", attr.Key)

			continue
		}

		err = r.attrPoll.WaitAvailable(ctx, func(ctx context.Context) (string, error) {
			return r.fetchAttributeStatus(ctx, col.ID, attr.Key)
		})
		if err != nil {
			res.AttributeErrors = append(res.AttributeErrors, EntityError{attr.Key, err})
			unavailable[attr.Key] = struct{}{}

			if errors.Is(err, ErrReadinessTimeout) {
				lg.With(log.Attr(attr.Key)).
					Warnf("Attribute %q did not become available in time", attr.Key)

				continue
			}

			res.Err = errors.Wrapf(err, "await attribute %q", attr.Key)

			return unavailable
		}

		res.AttributesCreated++
		lg.With(log.Attr(attr.Key)).Debugf("Attribute %q available", attr.Key)
	}

	return unavailable
}

// replicateIndexes replays the source indexes. An index referencing an
// attribute that never became available is recorded as failed without being
// submitted. Index failures never fail the collection.
func (r *Replicator) replicateIndexes(
	ctx context.Context,
	col *appwrite.Collection,
	res *Result,
	unavailable map[string]struct{},
) {
	lg := log.Ctx(ctx).With(log.Collection(col.ID, col.Name))

	indexes, err := appwrite.FetchAll(ctx, r.pageSize,
		func(i appwrite.Index) string { return i.Key },
		func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Index, error) {
			list, err := r.source.ListIndexes(ctx, r.sourceDB, col.ID, queries...)
			if err != nil {
				return nil, err
			}

			return list.Indexes, nil
		})
	if err != nil {
		res.Err = errors.Wrap(err, "list source indexes")

		return
	}

	for i := range indexes {
		idx := &indexes[i]

		if key, blocked := blockedBy(idx, unavailable); blocked {
			err := errors.Wrapf(ErrReadinessTimeout, "attribute %q", key)
			res.IndexErrors = append(res.IndexErrors, EntityError{idx.Key, err})
			lg.With(log.Index(idx.Key)).
				Warnf("Index %q skipped: attribute %q is not available", idx.Key, key)

			continue
		}

		err := r.dest.CreateIndex(ctx, r.destDB, col.ID, idx)
		if err != nil {
			res.IndexErrors = append(res.IndexErrors, EntityError{idx.Key, err})
			lg.With(log.Index(idx.Key)).Errorf(err, "Failed to create index %q", idx.Key)

			continue
		}

		err = r.indexPoll.WaitAvailable(ctx, func(ctx context.Context) (string, error) {
			return r.fetchIndexStatus(ctx, col.ID, idx.Key)
		})
		if err != nil {
			res.IndexErrors = append(res.IndexErrors, EntityError{idx.Key, err})

			if errors.Is(err, ErrReadinessTimeout) {
				lg.With(log.Index(idx.Key)).
					Warnf("Index %q did not become available in time", idx.Key)
			}

			continue
		}

		res.IndexesCreated++
		lg.With(log.Index(idx.Key)).Debugf("Index %q available", idx.Key)
	}
}

// blockedBy returns the first referenced attribute known to be not available.
// System keys and attributes that were not replayed are not tracked and do
// not block.
func blockedBy(idx *appwrite.Index, unavailable map[string]struct{}) (string, bool) {
	for _, key := range idx.Attributes {
		if _, ok := unavailable[key]; ok {
			return key, true
		}
	}

	return "", false
}

func (r *Replicator) fetchAttributeStatus(
	ctx context.Context, collID, key string,
) (string, error) {
	attrs, err := appwrite.FetchAll(ctx, r.pageSize,
		func(a appwrite.Attribute) string { return a.Key },
		func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Attribute, error) {
			list, err := r.dest.ListAttributes(ctx, r.destDB, collID, queries...)
			if err != nil {
				return nil, err
			}

			return list.Attributes, nil
		})
	if err != nil {
		return "", errors.Wrap(err, "list destination attributes")
	}

	for i := range attrs {
		if attrs[i].Key == key {
			return attrs[i].Status, nil
		}
	}

	return "", nil
}

func (r *Replicator) fetchIndexStatus(ctx context.Context, collID, key string) (string, error) {
	indexes, err := appwrite.FetchAll(ctx, r.pageSize,
		func(i appwrite.Index) string { return i.Key },
		func(ctx context.Context, queries ...appwrite.Query) ([]appwrite.Index, error) {
			list, err := r.dest.ListIndexes(ctx, r.destDB, collID, queries...)
			if err != nil {
				return nil, err
			}

			return list.Indexes, nil
		})
	if err != nil {
		return "", errors.Wrap(err, "list destination indexes")
	}

	for i := range indexes {
		if indexes[i].Key == key {
			return indexes[i].Status, nil
		}
	}

	return "", nil
}
