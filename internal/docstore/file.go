package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the document in a local file. Writes go to a temporary file
// in the same directory which is then renamed over the document.
type FileStore struct {
	path string
}

// NewFileStore returns a store for the document at name, relative to dir.
func NewFileStore(dir, name string) *FileStore {
	return &FileStore{path: filepath.Join(dir, filepath.FromSlash(name))}
}

func (s *FileStore) Exists(context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("could not stat %s: %w", s.path, err)
	}

	return true, nil
}

func (s *FileStore) Download(context.Context) ([]byte, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", s.path, err)
	}

	return content, nil
}

func (s *FileStore) Upload(_ context.Context, content []byte) (err error) {
	dir := filepath.Dir(s.path)

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".metrics-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write temporary file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not sync temporary file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary file: %w", err)
	}

	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("could not replace %s: %w", s.path, err)
	}

	return nil
}
