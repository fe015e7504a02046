package ports

import (
	"context"
	"io"
)

// BlobObject is a stored binary plus the metadata needed to serve it back.
type BlobObject struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// BlobStore persists avatar binaries by opaque key. Keys are generated by the
// application layer; the store never interprets them.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error
	Get(ctx context.Context, key string) (BlobObject, error)
	Delete(ctx context.Context, key string) error
}
