// Package diff classifies source documents as present or missing at the
// destination, making the missing-only mode safe to re-run.
package diff

import (
	"encoding/json"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/cloner/sanitize"
)

// Index is the existence index of one destination collection.
type Index struct {
	uniqueField string
	keys        map[string]struct{}
}

// BuildIndex indexes the destination documents by the configured unique
// identifier field. With no configured field, or for documents missing it,
// the key falls back to the serialized sanitized content. The fallback
// detects only exact field-for-field duplicates: a changed document is
// classified as new, not as an update.
func BuildIndex(existing []appwrite.Document, uniqueField string) *Index {
	idx := &Index{
		uniqueField: uniqueField,
		keys:        make(map[string]struct{}, len(existing)),
	}

	for _, doc := range existing {
		idx.keys[idx.keyOf(doc)] = struct{}{}
	}

	return idx
}

// Missing returns the source documents absent from the destination, in source
// order, and the count of documents already present.
func (idx *Index) Missing(source []appwrite.Document) ([]appwrite.Document, int) {
	missing := make([]appwrite.Document, 0, len(source))
	skipped := 0

	for _, doc := range source {
		if _, ok := idx.keys[idx.keyOf(doc)]; ok {
			skipped++

			continue
		}

		missing = append(missing, doc)
	}

	return missing, skipped
}

func (idx *Index) keyOf(doc appwrite.Document) string {
	clean := sanitize.Clean(doc)

	if idx.uniqueField != "" {
		if val, ok := clean[idx.uniqueField]; ok && val != nil {
			return "f:" + canonical(val)
		}
	}

	return "c:" + canonical(clean)
}

// canonical serializes a value deterministically: encoding/json emits map
// keys in sorted order.
func canonical(val any) string {
	data, err := json.Marshal(val)
	if err != nil {
		return ""
	}

	return string(data)
}
