package cloner

import (
	"time"

	"github.com/weehong/appwrite-database-cloner/cloner/schema"
)

// DocumentError records one failed document write.
type DocumentError struct {
	// SourceID is the document's identifier on the source instance.
	SourceID string
	Err      error
}

// CollectionResult accumulates one collection's outcome. Failures are
// recorded, never thrown: one failing entity never halts the batch.
type CollectionResult struct {
	ID   string
	Name string

	// Structure is nil when the mode does not replicate structure.
	Structure *schema.Result

	DocumentsFetched int
	DocumentsWritten int
	DocumentsSkipped int

	DocumentErrors []DocumentError

	// Err is a collection-level failure outside the structure replay,
	// e.g. the document fetch or the existence-index build failed.
	Err error
}

// Failed reports whether anything in the collection failed.
func (r *CollectionResult) Failed() bool {
	return r.Err != nil ||
		(r.Structure != nil && r.Structure.Failed()) ||
		len(r.DocumentErrors) != 0
}

// Result is the aggregate outcome of one replication run.
type Result struct {
	Mode Mode

	StartedAt  time.Time
	FinishedAt time.Time

	Collections []*CollectionResult
}

// Failed reports whether any collection failed.
func (r *Result) Failed() bool {
	for _, c := range r.Collections {
		if c.Failed() {
			return true
		}
	}

	return false
}

// DocumentsWritten totals the written documents across collections.
func (r *Result) DocumentsWritten() int {
	n := 0
	for _, c := range r.Collections {
		n += c.DocumentsWritten
	}

	return n
}

// DocumentsSkipped totals the documents skipped as already present.
func (r *Result) DocumentsSkipped() int {
	n := 0
	for _, c := range r.Collections {
		n += c.DocumentsSkipped
	}

	return n
}

// DocumentErrors totals the failed document writes.
func (r *Result) DocumentErrors() int {
	n := 0
	for _, c := range r.Collections {
		n += len(c.DocumentErrors)
	}

	return n
}

func (r *Result) collection(id string) *CollectionResult {
	for _, c := range r.Collections {
		if c.ID == id {
			return c
		}
	}

	return nil
}
