package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/utils"
)

// LocalStore writes assets below a directory that the HTTP server exposes at
// baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Put(ctx context.Context, folder string, a Asset) (*StoredAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	folder = filepath.Base(filepath.Clean("/" + folder))
	if folder == "/" || folder == "." {
		folder = ""
	}
	if err := os.MkdirAll(filepath.Join(s.dir, folder), 0o755); err != nil {
		return nil, apperrors.Internal(err, "failed to prepare upload dir")
	}

	name := utils.ObjectName(a.Name)
	f, err := os.Create(filepath.Join(s.dir, folder, name))
	if err != nil {
		return nil, apperrors.Internal(err, "failed to store upload")
	}
	n, err := io.Copy(f, a.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, apperrors.Internal(err, "failed to store upload")
	}

	return &StoredAsset{
		URL:         path.Join(s.baseURL, folder, name),
		Name:        a.Name,
		ContentType: a.ContentType,
		Size:        n,
	}, nil
}
