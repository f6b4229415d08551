// Package blob stores submitted document files. Document metadata lives in
// the relational store; this package only handles the bytes, addressed by an
// opaque reference.
package blob

import (
	"context"
	"io"
)

// Ref locates a stored object. It is persisted on the document row so the
// file can be fetched long after upload.
type Ref string

func (r Ref) String() string { return string(r) }

// Store is the object storage abstraction. A Put must be durably acknowledged
// before any metadata pointing at the ref is written.
type Store interface {
	// Put writes the object and returns its reference.
	Put(ctx context.Context, key string, contentType string, size int64, body io.Reader) (Ref, error)

	// Get opens the object for reading. Returns sentinel.ErrNotFound when the
	// ref does not exist. The caller closes the reader.
	Get(ctx context.Context, ref Ref) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing ref is not an error.
	Delete(ctx context.Context, ref Ref) error
}
