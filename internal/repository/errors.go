package repository

import (
	"fmt"

	"depot-helpdesk/internal/store"
)

// ValidationError - the input cannot be saved as given. Nothing was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError - the index does not address a request, usually a stale view.
type NotFoundError struct {
	Index int
	Len   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("request %d not found (have %d)", e.Index, e.Len)
}

// PersistenceError - the store rejected the write. The mutation did not
// happen in memory either.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persist failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConcurrentModificationError is returned (inside a PersistenceError) when
// another writer changed the documents. Reload and retry.
type ConcurrentModificationError = store.ConcurrentModificationError
