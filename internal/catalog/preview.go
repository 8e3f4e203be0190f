package catalog

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/abrezinsky/snackcounter/pkg/snackapi"
)

// File is an image chosen for upload
type File = snackapi.File

// Preview is a local reference to a chosen file that a renderer can display
// before the snack exists on the server
type Preview interface {
	Ref() string
	Release() error
}

// PreviewFactory creates previews for chosen files
type PreviewFactory interface {
	NewPreview(f File) (Preview, error)
}

// TempPreviews writes each chosen file to a temp file and exposes it as a
// file:// reference. Release deletes the temp file.
type TempPreviews struct {
	Dir string // empty means os.TempDir()
}

type tempPreview struct {
	path string
}

func (p *tempPreview) Ref() string {
	return "file://" + filepath.ToSlash(p.path)
}

func (p *tempPreview) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// NewPreview implements PreviewFactory
func (t TempPreviews) NewPreview(f File) (Preview, error) {
	name := "snack-preview-" + uuid.NewString() + filepath.Ext(f.Name)
	dir := t.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, f.Data, 0o600); err != nil {
		return nil, err
	}
	return &tempPreview{path: path}, nil
}
