package store

import (
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound is returned when a book id does not resolve.
	ErrBookNotFound = errors.New("book not found")
	// ErrHighlightNotFound is returned when a highlight id does not resolve.
	ErrHighlightNotFound = errors.New("highlight not found")
	// ErrHighlightDeleted is returned when mutating a soft-deleted highlight.
	ErrHighlightDeleted = errors.New("highlight already deleted")
	// ErrDuplicateHighlight is returned when manually adding a highlight
	// whose id is already stored.
	ErrDuplicateHighlight = errors.New("highlight already exists")
)

// SnapshotValidationError reports a structurally invalid backup snapshot.
type SnapshotValidationError struct {
	Reason string
}

func (e *SnapshotValidationError) Error() string {
	return fmt.Sprintf("invalid backup snapshot: %s", e.Reason)
}
