package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

// FileStore keeps one <collection>.json file per collection in a single
// directory. Writes go through a temp file and rename so a snapshot is
// never observed half-written.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(col store.Collection) string {
	return filepath.Join(f.dir, string(col)+".json")
}

func (f *FileStore) Load(_ context.Context, col store.Collection) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path(col))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (f *FileStore) Save(_ context.Context, col store.Collection, data []byte) error {
	tmp := f.path(col) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(col))
}

func (f *FileStore) Reset(_ context.Context) error {
	for _, col := range []store.Collection{store.ColUsers, store.ColParts, store.ColJobs, store.ColClients} {
		if err := os.Remove(f.path(col)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
