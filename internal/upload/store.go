package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskStore writes receipt and quote uploads to a local directory.
// Stored names are uuid-prefixed so two uploads of the same filename
// never collide.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save streams the upload to disk and returns the stored filename.
func (s *DiskStore) Save(originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(originalName))

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return name, nil
}

// Dir returns the directory uploads are served from.
func (s *DiskStore) Dir() string {
	return s.dir
}
