// Package snapshot persists the fetched source documents between the read
// and write phases. The file's presence after an aborted run is the resume
// checkpoint.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/errors"
)

// Snapshot is a self-contained record of one fetch phase.
type Snapshot struct {
	SourceID    string           `json:"sourceId"`
	DestID      string           `json:"destId"`
	FetchedAt   time.Time        `json:"fetchedAt"`
	Collections []CollectionDocs `json:"collections"`
}

// CollectionDocs holds one collection's fetched documents.
type CollectionDocs struct {
	CollectionID   string              `json:"collectionId"`
	CollectionName string              `json:"collectionName"`
	DocumentCount  int                 `json:"documentCount"`
	Documents      []appwrite.Document `json:"documents"`
}

// Write stores the snapshot at path. The write is atomic: a temporary file
// is renamed into place so an interrupted write never leaves a truncated
// snapshot behind.
func Write(path string, s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}

	_, err = tmp.Write(data)
	if err1 := tmp.Close(); err == nil {
		err = err1
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return errors.Wrap(err, "write snapshot")
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return errors.Wrap(err, "replace snapshot")
	}

	return nil
}

// Read loads the snapshot at path.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}

	s := &Snapshot{}

	err = json.Unmarshal(data, s)
	if err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}

	return s, nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// Delete removes the snapshot. A missing file is not an error.
func Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete snapshot")
	}

	return nil
}

// Size returns the snapshot file size in bytes, or zero.
func Size(path string) uint64 {
	st, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return uint64(st.Size()) //nolint:gosec
}
