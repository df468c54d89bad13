// Package storage abstracts the blob store that holds post images.
package storage

import (
	"context"
	"io"
)

// Store persists uploaded blobs and hands back a publicly reachable URL.
type Store interface {
	// Save writes the blob under the given key and returns its public URL.
	Save(ctx context.Context, key string, contentType string, r io.Reader) (string, error)
	// Remove deletes the blob at key. Missing blobs are not an error.
	Remove(ctx context.Context, key string) error
}
