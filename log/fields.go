package log

import (
	"time"

	"github.com/rs/zerolog"
)

// Field attaches a typed value to a logger context.
type Field func(zerolog.Context) zerolog.Context

// Collection annotates with a collection id and name.
func Collection(id, name string) Field {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("coll", id).Str("name", name)
	}
}

// Attr annotates with an attribute key.
func Attr(key string) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Str("attr", key) }
}

// Index annotates with an index key.
func Index(key string) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Str("index", key) }
}

// Doc annotates with a document id.
func Doc(id string) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Str("doc", id) }
}

// Mode annotates with the replication mode.
func Mode(mode string) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Str("mode", mode) }
}

// Count annotates with an item count.
func Count(n int64) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Int64("count", n) }
}

// Size annotates with a byte size.
func Size(n uint64) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Uint64("size", n) }
}

// Elapsed annotates with an elapsed duration.
func Elapsed(d time.Duration) Field {
	return func(c zerolog.Context) zerolog.Context { return c.Dur("elapsed", d) }
}
