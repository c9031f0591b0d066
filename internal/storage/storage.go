package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/rentalhub/apiserver/config"
)

// PictureStore holds rental pictures under opaque object keys. Stored
// pictures are served by the backend itself under the configured public
// base URL, so reads never go through the API server.
type PictureStore interface {
	Ensure(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// FromConfig constructs the configured picture store and makes sure its
// bucket exists.
func FromConfig(ctx context.Context, cfg config.StorageConfig) (PictureStore, error) {
	var (
		store PictureStore
		err   error
	)

	switch cfg.Backend {
	case "", "minio":
		store, err = newMinioStore(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
	case "gcs":
		store, err = newGCSStore(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if err := store.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	return store, nil
}
