package uploads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultURLPrefix is where disk uploads are served from
const DefaultURLPrefix = "/uploads"

// DiskStore writes uploads into a local directory and serves them back
type DiskStore struct {
	dir    string
	prefix string
}

// NewDiskStore returns a disk-backed store rooted at dir, creating it if needed
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, prefix: DefaultURLPrefix}, nil
}

// Dir returns the directory files are written to
func (s *DiskStore) Dir() string {
	return s.dir
}

// Prefix returns the URL path prefix used in refs
func (s *DiskStore) Prefix() string {
	return s.prefix
}

// Save streams r into a new file and returns its server-relative ref
func (s *DiskStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (Stored, error) {
	key := newKey(filename)
	dst := filepath.Join(s.dir, key)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return Stored{}, fmt.Errorf("write upload file: %w", err)
	}

	return Stored{
		Ref:         path.Join(s.prefix, key),
		Key:         key,
		Size:        n,
		ContentType: contentType,
	}, nil
}

// Remove deletes the file behind a ref produced by Save
func (s *DiskStore) Remove(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.prefix+"/")
	if !ok || key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Handler serves stored files under the store's prefix
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix(s.prefix+"/", http.FileServer(http.Dir(s.dir)))
}
