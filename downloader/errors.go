package downloader

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents different categories of download errors
type ErrorType int

const (
	ErrorInvalidURL ErrorType = iota
	ErrorNetworkFailure
	ErrorNoURL
	ErrorDownloadFailure
	ErrorTagFailure
	ErrorFileSystemError
	ErrorTimeout
	ErrorCancelled
	ErrorUnknown
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorInvalidURL:
		return "invalid_url"
	case ErrorNetworkFailure:
		return "network_failure"
	case ErrorNoURL:
		return "no_url"
	case ErrorDownloadFailure:
		return "download_failure"
	case ErrorTagFailure:
		return "tag_failure"
	case ErrorFileSystemError:
		return "filesystem_error"
	case ErrorTimeout:
		return "timeout"
	case ErrorCancelled:
		return "cancelled"
	case ErrorUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// DownloadError represents a structured error that occurred during download
type DownloadError struct {
	Type    ErrorType      `json:"type"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (de *DownloadError) Error() string {
	if de.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", de.Type.String(), de.Message, de.Cause)
	}
	return fmt.Sprintf("%s: %s", de.Type.String(), de.Message)
}

// Unwrap returns the underlying cause error
func (de *DownloadError) Unwrap() error {
	return de.Cause
}

// NewDownloadError creates a new DownloadError with the specified type and message
func NewDownloadError(errorType ErrorType, message string) *DownloadError {
	return &DownloadError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

// NewDownloadErrorWithCause creates a new DownloadError with a cause
func NewDownloadErrorWithCause(errorType ErrorType, message string, cause error) *DownloadError {
	return &DownloadError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error
func (de *DownloadError) WithContext(key string, value any) *DownloadError {
	if de.Context == nil {
		de.Context = make(map[string]any)
	}
	de.Context[key] = value
	return de
}

// IsType checks if the error is of a specific type
func (de *DownloadError) IsType(errorType ErrorType) bool {
	return de.Type == errorType
}

// IsDownloadError checks if an error is a DownloadError and optionally of a specific type.
// Wrapped errors are unwrapped.
func IsDownloadError(err error, errorType ...ErrorType) bool {
	var de *DownloadError
	if errors.As(err, &de) {
		if len(errorType) == 0 {
			return true
		}
		for _, et := range errorType {
			if de.Type == et {
				return true
			}
		}
	}
	return false
}

// errorTypeFor maps context errors to their dedicated types and everything else to fallback
func errorTypeFor(err error, fallback ErrorType) ErrorType {
	switch {
	case errors.Is(err, context.Canceled):
		return ErrorCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTimeout
	default:
		return fallback
	}
}
