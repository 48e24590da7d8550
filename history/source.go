// Package history reads registry artifacts as they were at an earlier
// revision.
//
// Compatibility checks compare the working tree against a base reference.
// Source abstracts where that base content comes from so the checks do not
// depend on git directly.
package history

import (
	"context"
	"errors"
)

var (
	// ErrRefNotFound is returned when a reference cannot be resolved.
	ErrRefNotFound = errors.New("reference not found")

	// ErrNotRepository is returned when no repository contains the directory.
	ErrNotRepository = errors.New("not a git repository")
)

// Source provides file content at historical references.
//
// Paths are slash-separated and relative to the registry root.
type Source interface {
	// ResolveRef reports whether ref names a revision. An unresolvable ref is
	// (false, nil); errors are reserved for failures of the source itself.
	ResolveRef(ctx context.Context, ref string) (bool, error)

	// FileAtRef returns the content of path at ref. A file absent at ref is
	// (nil, false, nil).
	FileAtRef(ctx context.Context, path, ref string) ([]byte, bool, error)

	// ChangedFiles lists paths added, modified or deleted between base and
	// head, sorted.
	ChangedFiles(ctx context.Context, base, head string) ([]string, error)
}
