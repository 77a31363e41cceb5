package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"catalogstudio/internal/domain"
)

// FileStore keeps each collection as <name>.json under one directory, one
// process at a time. Writes are serialized and land through a synced temp
// file and a rename.
type FileStore struct {
	root string
	mu   sync.Mutex
}

var errInvalidName = errors.New("storage: invalid document name")

func NewFileStore(root string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the directory documents are written to.
func (s *FileStore) Root() string { return s.root }

// file maps a document name to its path. Names are slash separated and may
// not climb out of the root.
func (s *FileStore) file(name string) (string, error) {
	name = strings.Trim(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"), "/")
	if name == "" || !fs.ValidPath(name) || path.Clean(name) != name {
		return "", fmt.Errorf("%w: %q", errInvalidName, name)
	}
	return filepath.Join(s.root, filepath.FromSlash(name)+".json"), nil
}

func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := s.file(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("storage: %s: %w", name, domain.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := s.file(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(file, data); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// Delete removes name; a missing document is not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := s.file(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

func writeAtomic(file string, data []byte) (err error) {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(file)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), file)
}

var _ domain.BlobStore = (*FileStore)(nil)
