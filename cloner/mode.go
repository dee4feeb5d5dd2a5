package cloner

import (
	"github.com/weehong/appwrite-database-cloner/errors"
)

// Mode selects what the run replicates.
type Mode string

const (
	// ModeFull replicates structure and data after a destructive clean.
	ModeFull Mode = "full"
	// ModeStructureOnly replicates collections, attributes, and indexes only.
	ModeStructureOnly Mode = "structure"
	// ModeDataOnly replicates documents into an existing structure.
	ModeDataOnly Mode = "data"
	// ModeMissingOnly inserts only documents not already present. Safe to
	// re-run.
	ModeMissingOnly Mode = "missing"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeFull, ModeStructureOnly, ModeDataOnly, ModeMissingOnly:
		return m, nil
	default:
		return "", errors.Errorf("unknown mode %q", s)
	}
}

// ReplicateStructure reports whether the mode replays schemas.
func (m Mode) ReplicateStructure() bool {
	return m == ModeFull || m == ModeStructureOnly
}

// ReplicateData reports whether the mode writes documents.
func (m Mode) ReplicateData() bool {
	return m == ModeFull || m == ModeDataOnly || m == ModeMissingOnly
}

// Incremental reports whether existing destination documents are diffed
// instead of cleaned away.
func (m Mode) Incremental() bool {
	return m == ModeMissingOnly
}

// Destructive reports whether the run deletes all destination collections
// before replicating. Replication is not additive outside the incremental
// mode.
func (m Mode) Destructive() bool {
	return m.ReplicateStructure() && !m.Incremental()
}
