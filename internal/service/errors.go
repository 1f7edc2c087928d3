package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("image format not supported")
	ErrInvalidLiveTime   = errors.New("live time must be between 300 and 3000 seconds")
	ErrLiveTimeRequired  = fmt.Errorf("%w: no live_time field", ErrInvalidLiveTime)
	ErrForbidden         = errors.New("you do not have access to this image")
	ErrNotFound          = errors.New("image does not exist")
	ErrFileMissing       = fmt.Errorf("%w: backing file missing", ErrNotFound)
	ErrExpired           = errors.New("image has expired")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
