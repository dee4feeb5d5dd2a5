package cloner

import (
	"slices"

	"github.com/weehong/appwrite-database-cloner/appwrite"
)

// Filter returns true if a collection is allowed.
type Filter func(col *appwrite.Collection) bool

// AllowAllFilter allows every collection.
func AllowAllFilter(*appwrite.Collection) bool {
	return true
}

// MakeFilter builds a collection filter from include and exclude lists.
// Entries match a collection's id or name. Exclusion takes precedence; a
// non-empty include list denies by default.
func MakeFilter(include, exclude []string) Filter {
	if len(include) == 0 && len(exclude) == 0 {
		return AllowAllFilter
	}

	return func(col *appwrite.Collection) bool {
		if matches(exclude, col) {
			return false
		}

		if len(include) > 0 {
			return matches(include, col)
		}

		return true
	}
}

func matches(list []string, col *appwrite.Collection) bool {
	return slices.Contains(list, col.ID) || slices.Contains(list, col.Name)
}
