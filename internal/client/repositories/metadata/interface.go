// Package metadata stores small key/value blobs in the local registry
// database. The site registry itself lives under a single key.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or replaces key. A nil value is stored as empty.
	Set(ctx context.Context, key string, value []byte) error
}
