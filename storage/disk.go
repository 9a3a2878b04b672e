//go:generate go run go.uber.org/mock/mockgen -source=disk.go -destination=../mocks/mock_blob_store.go -package=mocks
// Package storage holds the attachment blob store: a flat on-disk namespace
// keyed by the original filename.
package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"messenger/errors"
)

type IBlobStore interface {
	Save(filename string, data []byte) error
	Open(filename string) (io.ReadCloser, error)
	Path(filename string) string
}

type DiskStore struct {
	root string
	log  *slog.Logger
}

func NewDiskStore(root string, log *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root, log: log}, nil
}

// Save writes the blob under its original filename. Two uploads sharing a name
// overwrite each other: last write wins, no renaming or de-duplication.
func (d *DiskStore) Save(filename string, data []byte) error {
	path := d.Path(filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	d.log.Debug("Blob stored", "file", filename, "bytes", len(data))
	return nil
}

// Open returns a reader over a stored blob, or ErrNotFound.
func (d *DiskStore) Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(d.Path(filename))
	if os.IsNotExist(err) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Path resolves a filename inside the store root. filepath.Base strips any
// directory components, so a crafted name cannot escape the namespace.
func (d *DiskStore) Path(filename string) string {
	return filepath.Join(d.root, filepath.Base(filename))
}
