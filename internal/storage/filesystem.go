package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Compile-time check that FileSystem implements Storage.
var _ Storage = (*FileSystem)(nil)

// ErrInvalidName is returned for saved filenames that could escape the
// uploads directory.
var ErrInvalidName = errors.New("invalid saved filename")

const thumbDir = "thumbs"

// FileSystem implements Storage using the local filesystem. Originals live
// flat under <basePath>/<savedFilename>; thumbnails under
// <basePath>/thumbs/<savedFilename>.
type FileSystem struct {
	basePath string
}

// NewFileSystem creates a FileSystem storage rooted at basePath, creating
// the directory tree if needed.
func NewFileSystem(basePath string) (*FileSystem, error) {
	if err := os.MkdirAll(filepath.Join(basePath, thumbDir), 0755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &FileSystem{basePath: basePath}, nil
}

// safeName rejects names containing path separators or traversal elements.
// Saved filenames are system-generated, so anything else indicates a bug or
// a forged request.
func safeName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

func (fs *FileSystem) path(savedFilename string) string {
	return filepath.Join(fs.basePath, savedFilename)
}

func (fs *FileSystem) thumbPath(savedFilename string) string {
	return filepath.Join(fs.basePath, thumbDir, savedFilename)
}

// Store writes data to disk using atomic write (temp file + rename).
// It returns the number of bytes written.
func (fs *FileSystem) Store(savedFilename string, data io.Reader) (int64, error) {
	if err := safeName(savedFilename); err != nil {
		return 0, err
	}
	return fs.atomicWrite(fs.path(savedFilename), data)
}

func (fs *FileSystem) atomicWrite(dst string, data io.Reader) (int64, error) {
	dir := filepath.Dir(dst)

	// Write to a temp file in the same directory for atomic rename.
	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, data)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing data: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("renaming temp file to %s: %w", dst, err)
	}

	// Rename succeeded; prevent deferred cleanup from removing the final file.
	tmpPath = ""

	return n, nil
}

// Retrieve opens the stored file and returns an io.ReadCloser.
func (fs *FileSystem) Retrieve(savedFilename string) (io.ReadCloser, error) {
	if err := safeName(savedFilename); err != nil {
		return nil, err
	}
	f, err := os.Open(fs.path(savedFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found: %s", savedFilename)
		}
		return nil, fmt.Errorf("opening file %s: %w", savedFilename, err)
	}
	return f, nil
}

// Delete removes the stored file. It is idempotent: deleting a non-existent
// file returns no error.
func (fs *FileSystem) Delete(savedFilename string) error {
	if err := safeName(savedFilename); err != nil {
		return err
	}
	if err := os.Remove(fs.path(savedFilename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file %s: %w", savedFilename, err)
	}
	return nil
}

// Exists checks whether the file exists on disk.
func (fs *FileSystem) Exists(savedFilename string) (bool, error) {
	if err := safeName(savedFilename); err != nil {
		return false, err
	}
	_, err := os.Stat(fs.path(savedFilename))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("checking file %s: %w", savedFilename, err)
}

// StoreThumb writes thumbnail data using the same atomic write as Store.
func (fs *FileSystem) StoreThumb(savedFilename string, data io.Reader) (int64, error) {
	if err := safeName(savedFilename); err != nil {
		return 0, err
	}
	return fs.atomicWrite(fs.thumbPath(savedFilename), data)
}

// RetrieveThumb opens the stored thumbnail.
func (fs *FileSystem) RetrieveThumb(savedFilename string) (io.ReadCloser, error) {
	if err := safeName(savedFilename); err != nil {
		return nil, err
	}
	f, err := os.Open(fs.thumbPath(savedFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("thumbnail not found: %s", savedFilename)
		}
		return nil, fmt.Errorf("opening thumbnail %s: %w", savedFilename, err)
	}
	return f, nil
}

// DeleteThumb removes the stored thumbnail. Idempotent.
func (fs *FileSystem) DeleteThumb(savedFilename string) error {
	if err := safeName(savedFilename); err != nil {
		return err
	}
	if err := os.Remove(fs.thumbPath(savedFilename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing thumbnail %s: %w", savedFilename, err)
	}
	return nil
}
