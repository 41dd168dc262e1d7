// Package errors defines the error taxonomy shared by the kagglehub packages.
// Sentinels are matched with errors.Is; the typed errors carry the context
// (resource URL, server message, checksums) needed to self-diagnose a failure.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types.
var (
	// Handle errors.
	ErrInvalidHandle         = fmt.Errorf("invalid handle")
	ErrUnsupportedHandleKind = fmt.Errorf("unsupported handle kind")

	// Archive errors.
	ErrUnsupportedArchive  = fmt.Errorf("unsupported archive format")
	ErrUnsafeArchiveEntry  = fmt.Errorf("archive entry escapes target directory")
	ErrDataCorruption      = fmt.Errorf("data corruption detected")
	ErrBackend             = fmt.Errorf("backend error")
	ErrNotFound            = fmt.Errorf("resource not found")
	ErrPermissionDenied    = fmt.Errorf("permission denied")
	ErrReadTimeout         = fmt.Errorf("read timed out")
	ErrNotSupported        = fmt.Errorf("not supported")
	ErrNoResolver          = fmt.Errorf("no resolver supports the request")
	ErrMountTimeout        = fmt.Errorf("timed out waiting for mount")
	ErrPathNotInMount      = fmt.Errorf("path not found in mounted resource")
	ErrMissingCredentials  = fmt.Errorf("missing credentials")
	ErrTokenExpired        = fmt.Errorf("token expired")
	ErrCacheDirectory      = fmt.Errorf("cache directory cannot be empty")
	ErrInvalidPath         = fmt.Errorf("invalid path")
	ErrEmptyConfigPath     = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath   = fmt.Errorf("invalid config file path")
	ErrConfigParse         = fmt.Errorf("failed to parse config")
	ErrConfigValidation    = fmt.Errorf("invalid configuration")
	ErrConfigEncode        = fmt.Errorf("failed to encode config")
	ErrEmptyEndpoint       = fmt.Errorf("endpoint cannot be empty")
	ErrNegativeTimeout     = fmt.Errorf("timeouts cannot be negative")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrInvalidOutputFormat = fmt.Errorf("invalid output format")
)

// InvalidHandleError reports a handle string that could not be parsed.
type InvalidHandleError struct {
	Input  string
	Reason string
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("invalid handle %q: %s", e.Input, e.Reason)
}

// Is makes InvalidHandleError match ErrInvalidHandle.
func (e *InvalidHandleError) Is(target error) bool { return target == ErrInvalidHandle }

// NewInvalidHandle creates an InvalidHandleError.
func NewInvalidHandle(input, reasonFormat string, args ...interface{}) error {
	return &InvalidHandleError{Input: input, Reason: fmt.Sprintf(reasonFormat, args...)}
}

// DataCorruptionError reports a checksum mismatch on a downloaded file.
type DataCorruptionError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *DataCorruptionError) Error() string {
	return fmt.Sprintf("the X-Goog-Hash header indicated a MD5 checksum of %s but the downloaded file %s has a checksum of %s; the file was removed, please retry the download",
		e.Expected, e.Path, e.Actual)
}

// Is makes DataCorruptionError match ErrDataCorruption.
func (e *DataCorruptionError) Is(target error) bool { return target == ErrDataCorruption }

// BackendError reports a malformed or unsuccessful structured response from a platform RPC.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// Is makes BackendError match ErrBackend.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// NewBackendError creates a BackendError with a formatted message.
func NewBackendError(format string, args ...interface{}) error {
	return &BackendError{Message: fmt.Sprintf(format, args...)}
}

// HTTPError is a non-2xx response from the platform API.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string { return e.Message }

// Is maps status codes onto ErrNotFound and ErrPermissionDenied.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrPermissionDenied:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether err is (or wraps) a not-found response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidLogLevelWithDetails creates a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidOutputFormatWithDetails creates a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutputFormat, format)
}
