// Package storage defines the gateway to the canonical JSON snapshots in
// object storage. The abstraction keeps the jobs independent of a specific
// backend (Google Cloud Storage in production, the local filesystem or memory
// for development and tests).
package storage

import "context"

// Store is the common interface for snapshot persistence.
//
// Load returns (nil, false, nil) when the object does not exist yet; a
// missing snapshot is an ordinary empty-prior-collection branch, not an
// error. Any other failure is returned as an error and fails the invocation.
type Store interface {
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	// EnsureBucket makes sure the backing bucket exists and carries the
	// CORS policy the website needs to read the snapshots.
	EnsureBucket(ctx context.Context) error
}

// NoOp discards saves and never finds anything. Useful for dry runs where
// pages are crawled but nothing is persisted.
type NoOp struct{}

// Load for NoOp always reports not found.
func (NoOp) Load(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Save for NoOp does nothing.
func (NoOp) Save(context.Context, string, []byte) error { return nil }

// EnsureBucket for NoOp does nothing.
func (NoOp) EnsureBucket(context.Context) error { return nil }
