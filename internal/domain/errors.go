package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrRateLimited        = errors.New("too many requests")

	ErrPasswordResetTokenInvalid = errors.New("password reset token is invalid")

	// ErrAuthRequired means there is no usable session; clients route to login.
	ErrAuthRequired = errors.New("authentication required")

	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrValidation)
	ErrFileTooLarge        = fmt.Errorf("%w: file exceeds maximum allowed size", ErrValidation)

	ErrStorageWrite   = errors.New("object storage write failed")
	ErrStorageRead    = errors.New("object storage read failed")
	ErrRowWrite       = errors.New("document record write failed")
	ErrRowRead        = errors.New("document record read failed")
	ErrPartialFailure = errors.New("file stored but document record was not saved")

	ErrSlotBusy          = errors.New("another operation is in progress for this document")
	ErrInvalidTransition = errors.New("invalid document status transition")
	ErrTicketExpired     = errors.New("pending action has expired")
)

// ValidationError describes a rejected input. It matches ErrValidation via
// errors.Is, and Err, when set, names the more specific sentinel.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NewFileTooLargeError reports an upload over limit bytes.
func NewFileTooLargeError(limit int64) error {
	return &ValidationError{
		Field:   "file",
		Message: fmt.Sprintf("File size exceeds %s limit.", FormatSize(limit)),
		Err:     ErrFileTooLarge,
	}
}

// FormatSize renders whole mebibytes as "5MB" and anything else in bytes.
func FormatSize(n int64) string {
	const mb = 1 << 20
	if n > 0 && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
