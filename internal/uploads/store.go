// Package uploads accepts single-file multipart uploads and persists them to a
// blob store (local disk or an S3-compatible bucket).
package uploads

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Stored describes a file that has been written to a Store
type Stored struct {
	// Ref is what gets saved in the snack's img field: a server-relative
	// path for disk storage or an absolute URL for bucket storage.
	Ref         string
	Key         string
	Size        int64
	ContentType string
}

// Store persists uploaded files
type Store interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (Stored, error)
	// Remove deletes a previously stored file by its Ref. Refs that this
	// store did not produce are ignored.
	Remove(ctx context.Context, ref string) error
}

// allowedExt maps lowercase image extensions we keep on the stored key
var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".avif": true,
}

// newKey returns a collision-free object key that keeps the original image extension
func newKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		ext = ""
	}
	return uuid.NewString() + ext
}
