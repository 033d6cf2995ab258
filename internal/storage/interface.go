package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Retrieve when no object has the given name
var ErrNotFound = errors.New("object not found")

// ContentCache stores named blobs of scraped content. Store replaces any existing
// object of the same name.
type ContentCache interface {
	Store(ctx context.Context, name string, data []byte) error
	Retrieve(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// New returns the cache backend selected by name: "file" (rooted at dir) or "azure".
func New(backend, dir, account, container string) (ContentCache, error) {
	switch backend {
	case "file", "":
		return NewFileStorage(dir)
	case "azure":
		return NewAzureStorage(account, container)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
