package storage

import (
	"context"
	"io"
)

// Asset is an upload waiting to be stored.
type Asset struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredAsset describes where an asset ended up.
type StoredAsset struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// AssetStore persists binary uploads and returns a URL clients can fetch.
type AssetStore interface {
	Put(ctx context.Context, folder string, a Asset) (*StoredAsset, error)
}
