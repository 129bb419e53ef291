package repository

import "fmt"

// MergeResult reports one append-only merge into the catalog.
type MergeResult struct {
	Added   int
	Skipped int
	Total   int
}

// PersistenceError wraps a failed dataset read or write.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
