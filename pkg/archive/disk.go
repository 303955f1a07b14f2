package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DiskStore writes each capture as <id>.bin, <id>.json and <id>.meta.json
// under a directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed and returns a DiskStore rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "Failed to create archive directory %s", dir)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the archive directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Put writes the capture files and returns the capture id.
func (s *DiskStore) Put(ctx context.Context, c Capture) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := newID(c.Time)

	meta, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "Failed to marshal capture metadata")
	}
	files := []struct {
		name string
		data []byte
	}{
		{id + ".bin", c.Raw},
		{id + ".json", c.JSON},
		{id + ".meta.json", meta},
	}
	for i, f := range files {
		path := filepath.Join(s.dir, f.name)
		if err := os.WriteFile(path, f.data, 0644); err != nil {
			for _, written := range files[:i] {
				os.Remove(filepath.Join(s.dir, written.name))
			}
			return "", errors.Wrapf(err, "Failed to write %s", path)
		}
	}
	return id, nil
}
