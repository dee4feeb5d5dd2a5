package appwrite

import (
	"encoding/json"
)

// Query is the service's JSON query encoding for listing endpoints.
type Query string

func makeQuery(method string, values ...any) Query {
	data, _ := json.Marshal(map[string]any{
		"method": method,
		"values": values,
	})

	return Query(data)
}

// QueryLimit caps the page size of a listing call.
func QueryLimit(n int) Query {
	return makeQuery("limit", n)
}

// QueryCursorAfter continues a listing after the entity with the given id.
func QueryCursorAfter(id string) Query {
	return makeQuery("cursorAfter", id)
}
