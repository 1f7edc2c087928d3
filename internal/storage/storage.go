package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/thumbnailer/internal/config"
)

var (
	// ErrNotExist is returned by Open when nothing is stored at the path.
	ErrNotExist = errors.New("storage: object does not exist")
	// ErrInvalidPath is returned for paths that would escape the storage root.
	ErrInvalidPath = errors.New("storage: invalid path")
)

// Storage is a byte store addressed by slash-separated hierarchical paths
// such as "{user_id}/images/{file}". Writes to a single path are atomic.
type Storage interface {
	// Save stores a file at the given path, replacing any previous content
	Save(path string, file io.Reader) error

	// Open returns the content stored at path or ErrNotExist
	Open(path string) (io.ReadCloser, error)

	// Exists reports whether something is stored at path
	Exists(path string) (bool, error)

	// Delete removes the file at path. Deleting a missing path is not an error.
	Delete(path string) error

	// List returns the paths of all files stored under prefix
	List(prefix string) ([]string, error)
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "local", "":
		slog.Info("initializing local storage", "root", c.MediaRoot)
		return NewLocalStorage(c.MediaRoot)
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// ReadAll opens path and reads it fully.
func ReadAll(s Storage, path string) ([]byte, error) {
	rc, err := s.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}
