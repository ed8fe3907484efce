package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel matched with errors.Is for any not-found
// repository failure, whatever its message.
var ErrNotFound = errors.New("not found")

// Kind classifies repository-level failures.
type Kind string

const (
	// KindNotFound means the requested document or row does not exist.
	KindNotFound Kind = "NotFound"
	// KindStorage wraps unexpected database failures.
	KindStorage Kind = "Storage"
	// KindEncryption wraps encryption service failures.
	KindEncryption Kind = "Encryption"
)

// Error is the repository-level error: a kind, a human-readable message,
// and an optional wrapped cause for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrNotFound) match any not-found Error.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

func notFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func storageError(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: message, Cause: cause}
}

func encryptionError(message string, cause error) *Error {
	return &Error{Kind: KindEncryption, Message: message, Cause: cause}
}
