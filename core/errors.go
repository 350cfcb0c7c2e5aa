package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMoreRows is the page-level termination signal: the expected
	// table or row marker is absent.
	ErrNoMoreRows = errors.New("no more table rows")

	// ErrExtractionMiss marks a sub-element absent on an otherwise
	// successful page. It degrades to an empty field.
	ErrExtractionMiss = errors.New("expected element not found")

	ErrCollectionClosed = errors.New("collection is closed")
)

// SchemaError is fatal for a collection: without a schema no row can be
// interpreted.
type SchemaError struct {
	Kind   LessonKind
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s schema: %s", e.Kind, e.Reason)
}

// TransientError reports a fetch that kept failing with a network, timeout
// or server error after the caller's retries.
type TransientError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("fetching %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// ErrEmptyCollection reports a harvest whose first list page did not exist.
var ErrEmptyCollection = errors.New("collection has no list pages")
