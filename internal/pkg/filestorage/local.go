package filestorage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/collegeapi/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // URL prefix the root is served under, e.g. /media
}

// NewLocalStorage creates a new LocalStorage instance and ensures the root exists.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Root returns the directory files are stored under
func (ls *LocalStorage) Root() string {
	return ls.basePath
}

// resolve maps a relative storage path onto the filesystem, refusing
// anything that would land outside the root.
func (ls *LocalStorage) resolve(relPath string) (string, error) {
	slashed := filepath.ToSlash(relPath)
	if slashed == "" || strings.HasPrefix(slashed, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
		}
	}
	clean := path.Clean("/" + slashed)
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Save writes to a temporary file in the destination directory and renames it
// into place, so readers see either the old or the new content.
func (ls *LocalStorage) Save(relPath string, r io.Reader) error {
	dstPath, err := ls.resolve(relPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return fmt.Errorf("failed to create subdirectory: %w", err)
	}

	tmpPath := filepath.Join(dir, ".tmp-"+uuid.New().String())
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error().Err(err).Str("path", tmpPath).Msg("Failed to create destination file")
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err = io.Copy(tmp, r); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to flush file content: %w", err)
	}

	if err = os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to move file into place")
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	logger.Debug().Str("path", relPath).Msg("File saved successfully")
	return nil
}

// Delete removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) Delete(relPath string) error {
	physicalPath, err := ls.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("path", relPath).Msg("File to delete does not exist")
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Debug().Str("path", relPath).Msg("File deleted successfully")
	return nil
}

// Exists reports whether a regular file is stored at relPath
func (ls *LocalStorage) Exists(relPath string) (bool, error) {
	physicalPath, err := ls.resolve(relPath)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(physicalPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// URL returns the public path for relPath
func (ls *LocalStorage) URL(relPath string) string {
	return ls.baseURL + "/" + strings.TrimPrefix(filepath.ToSlash(relPath), "/")
}
