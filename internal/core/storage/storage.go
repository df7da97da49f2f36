// Package storage provides the pluggable persistence behind the document
// store: a durable file-based fallback and an optional SQLite-backed engine,
// both implementing the same contract over a document ID.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cvforge/cvforge/internal/core/document"
)

// Backend is the persistence contract. Implementations must be safe for
// concurrent use.
type Backend interface {
	// List returns all known document IDs.
	List(ctx context.Context) ([]string, error)
	// Get loads and validates the document stored under id. It returns
	// *NotFoundError when no record exists and *CorruptedError when a record
	// exists but fails structural validation.
	Get(ctx context.Context, id string) (*document.Resume, error)
	// Save persists the document under id, overwriting any previous record.
	Save(ctx context.Context, id string, doc *document.Resume) error
	// Delete removes the record for id. Deleting an absent id returns
	// *NotFoundError.
	Delete(ctx context.Context, id string) error
	// Exists reports whether a record exists for id.
	Exists(ctx context.Context, id string) (bool, error)
}

// NotFoundError reports that no record exists for an ID. Recoverable: the
// caller may create a new document under that ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.ID)
}

// CorruptedError reports that a record exists but fails structural
// validation. It must never be collapsed into NotFoundError: the stored data
// is still there and must not be silently overwritten.
type CorruptedError struct {
	ID    string
	Cause error
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("document %q is corrupted: %v", e.ID, e.Cause)
}

func (e *CorruptedError) Unwrap() error { return e.Cause }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsCorrupted reports whether err is a CorruptedError.
func IsCorrupted(err error) bool {
	var ce *CorruptedError
	return errors.As(err, &ce)
}
