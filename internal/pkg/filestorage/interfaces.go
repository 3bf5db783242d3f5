package filestorage

import (
	"errors"
	"io"
)

// ErrInvalidPath is returned for empty paths and paths escaping the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// FileStorage defines the interface for media storage operations.
// Paths are relative, slash separated, and addressed from the storage root.
type FileStorage interface {
	// Save writes the content of r at relPath, replacing any file already there
	Save(relPath string, r io.Reader) error

	// Delete removes the file at relPath; a missing file is not an error
	Delete(relPath string) error

	// Exists reports whether a file is stored at relPath
	Exists(relPath string) (bool, error)

	// URL returns the public path under which relPath is served
	URL(relPath string) string
}
