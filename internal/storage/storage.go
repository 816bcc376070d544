package storage

import (
	"context"
	"io"
)

// ObjectStore is the object-storage contract the pipeline depends on. A
// document has exactly one storage key once its upload completes.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
