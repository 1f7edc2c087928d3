package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrFileEmpty    = errors.New("the submitted file is empty")
	ErrFileNoName   = errors.New("no filename could be determined")
	ErrFileTooLarge = errors.New("file too large")
)

// FileConstraints defines validation rules applied before an upload is stored.
// Content checks happen later, once the bytes are decoded.
type FileConstraints struct {
	MaxSize       int64
	MaxNameLength int
}

// UploadConstraints returns the rules for original image uploads.
func UploadConstraints(maxSize int64) FileConstraints {
	return FileConstraints{
		MaxSize:       maxSize,
		MaxNameLength: 255,
	}
}

// ValidateFile checks the multipart header of an upload.
func ValidateFile(header *multipart.FileHeader, constraints FileConstraints) error {
	name := filepath.Base(strings.TrimSpace(header.Filename))
	if name == "" || name == "." || name == "/" {
		return ErrFileNoName
	}

	if constraints.MaxNameLength > 0 && len(name) > constraints.MaxNameLength {
		return fmt.Errorf("filename has more than %d characters (it has %d)", constraints.MaxNameLength, len(name))
	}

	if header.Size == 0 {
		return ErrFileEmpty
	}

	if constraints.MaxSize > 0 && header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, maxMB)
	}

	return nil
}

// Extension returns the lower-cased extension of an uploaded filename.
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
