// Package store is the document database boundary. Documents are opaque
// values addressed by collection name and field-equality filters; the
// backends assign each inserted document a string "_id".
package store

import (
	"context"
	"errors"
	"fmt"
)

// IDField is the document field holding the backend-assigned identifier.
const IDField = "_id"

// Error kinds. Every error returned by a Store wraps exactly one of them.
var (
	// ErrBackend means the database itself failed or could not be reached.
	ErrBackend = errors.New("store backend failure")
	// ErrEncoding means a document, filter or update could not be converted.
	ErrEncoding = errors.New("store encoding failure")
)

// Error describes a failed store operation.
type Error struct {
	Op         string
	Collection string
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Collection, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

func backendErr(op, collection string, err error) error {
	return &Error{Op: op, Collection: collection, Kind: ErrBackend, Err: err}
}

func encodingErr(op, collection string, err error) error {
	return &Error{Op: op, Collection: collection, Kind: ErrEncoding, Err: err}
}

// Filter matches documents whose fields equal every given value.
type Filter map[string]any

// Update describes field assignments and removals applied to one document.
type Update struct {
	Set   map[string]any
	Unset []string
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool { return len(u.Set) == 0 && len(u.Unset) == 0 }

// Store is the document database adapter.
type Store interface {
	// FindOne decodes the first document matching filter into out.
	// It reports false with a nil error when nothing matches.
	FindOne(ctx context.Context, collection string, filter Filter, out any) (bool, error)
	// InsertOne stores doc and returns the identifier assigned to it.
	InsertOne(ctx context.Context, collection string, doc any) (string, error)
	// UpdateOne applies update to at most one document matching filter.
	// Matching nothing is not an error.
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update) error
	// Close releases the backend.
	Close(ctx context.Context) error
}
