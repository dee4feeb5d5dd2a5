// Package sanitize prepares fetched documents for re-insertion: the service
// rejects writes that carry server-assigned metadata, and relationship fields
// must be submitted as identifier references rather than expanded payloads.
package sanitize

// Service-injected metadata keys present on every fetched document.
//
//nolint:gochecknoglobals
var metadataKeys = map[string]struct{}{
	"$id":           {},
	"$collectionId": {},
	"$databaseId":   {},
	"$createdAt":    {},
	"$updatedAt":    {},
	"$permissions":  {},
	"$sequence":     {},
}

// IsMetadataKey reports whether key is service-injected metadata.
func IsMetadataKey(key string) bool {
	_, ok := metadataKeys[key]

	return ok
}

// Clean returns the document's user-defined fields with all service metadata
// stripped and every relationship expansion reduced to its bare identifier.
// Nested objects are cleaned recursively; scalars pass through unchanged.
func Clean(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))

	for key, val := range doc {
		if IsMetadataKey(key) {
			continue
		}

		out[key] = cleanValue(val)
	}

	return out
}

func cleanValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		if id, ok := relationshipID(v); ok {
			return id
		}

		return Clean(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = cleanValue(elem)
		}

		return out
	default:
		return val
	}
}

// relationshipID detects a relationship expansion: an object carrying both an
// identifier and a collection-id marker. User data cannot collide with this
// shape because the service rejects $-prefixed user keys.
func relationshipID(m map[string]any) (string, bool) {
	id, hasID := m["$id"].(string)
	_, hasColl := m["$collectionId"]

	return id, hasID && hasColl
}
