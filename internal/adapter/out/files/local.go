// Package files persists uploaded images on local disk and hands back the
// stored name for URL building.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save stores the payload under a timestamp-prefixed variant of the original
// filename and returns the stored name. The original name is reduced to its
// base so a crafted filename cannot escape the upload dir.
func (s *LocalStore) Save(originalName string, r io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(originalName))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return name, nil
}

// Dir is the directory served statically under the uploads prefix.
func (s *LocalStore) Dir() string {
	return s.dir
}
