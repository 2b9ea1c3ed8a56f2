// Package rerr holds the sentinel errors shared by every layer of the
// composite indexing structure (collision list, balanced hash tree, bucket
// table) so that a -EEXIST-style logical failure can be told apart from a
// contract violation all the way up to the public Set facade without
// internal packages importing the root package (which would be a cycle).
package rerr

import "errors"

var (
	// ErrDuplicate is returned when inserting an element that already
	// compares equal (per the bound Config's Eq) to one already present.
	ErrDuplicate = errors.New("reset: element already present")

	// ErrNotFound is returned when removing an element that is not
	// present. Lookups report absence with a bool instead.
	ErrNotFound = errors.New("reset: element not found")
)
