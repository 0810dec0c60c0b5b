// ABOUTME: Media-reference provider: imports profile pictures into the data dir.
// ABOUTME: Returns opaque file URIs; the rest of the system never interprets them.

package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Importer copies picture files into a managed media directory and hands
// back opaque URIs. The store persists these strings uninterpreted.
type Importer struct {
	dir string
}

// NewImporter creates an importer rooted at the given media directory.
func NewImporter(dir string) *Importer {
	return &Importer{dir: dir}
}

// Import copies the file at srcPath into the media directory under a
// generated name and returns a file URI for it. The original extension is
// kept so image viewers can still identify the format.
func (i *Importer) Import(srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening picture: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(i.dir, 0755); err != nil {
		return "", fmt.Errorf("creating media directory: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(srcPath)
	dstPath := filepath.Join(i.dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("creating media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("copying picture: %w", err)
	}

	abs, err := filepath.Abs(dstPath)
	if err != nil {
		return "", fmt.Errorf("resolving media path: %w", err)
	}

	return "file://" + abs, nil
}
