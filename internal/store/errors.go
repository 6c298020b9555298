package store

import (
	"errors"
	"regexp"
)

// Sentinel errors for store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound indicates the requested demo does not exist.
	ErrNotFound = errors.New("demo not found")

	// ErrDemoExists indicates a demo with the same ID already exists.
	// Concurrent create/delete of the same ID is a race with undefined
	// outcome; the store makes no cross-request locking guarantee.
	ErrDemoExists = errors.New("demo already exists")

	// ErrStaticDemo indicates the operation targeted a built-in demo,
	// which cannot be created or deleted.
	ErrStaticDemo = errors.New("demo is built-in")

	// ErrInvalidID indicates an identifier that is empty or not a
	// path-safe slug. Rejecting these before any filesystem access is
	// the traversal hardening boundary.
	ErrInvalidID = errors.New("invalid identifier")
)

// slugPattern matches URL-safe slugs. Dots are excluded entirely so that
// traversal sequences can never reach a filesystem path.
var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidID reports whether s is a non-empty path-safe slug.
func ValidID(s string) bool {
	return slugPattern.MatchString(s)
}
