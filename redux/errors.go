package redux

import (
	"errors"
	"fmt"
)

var (
	// ErrMarkerNotFound indicates that the page does not contain the state marker.
	ErrMarkerNotFound = errors.New("state marker not found")
	// ErrNoOpeningBrace indicates that no '{' follows the state marker.
	ErrNoOpeningBrace = errors.New("opening brace not found after marker")
	// ErrJSONParse indicates that the extracted text is not a valid JSON document.
	ErrJSONParse = errors.New("invalid embedded state JSON")
)

// ParseError describes why the extracted state text could not be parsed
type ParseError struct {
	Offset int64 // byte offset into the extracted text, -1 when unknown
	Length int   // length of the extracted text
	Cause  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%v at offset %d of %d bytes: %v", ErrJSONParse, e.Offset, e.Length, e.Cause)
	}
	return fmt.Sprintf("%v (%d bytes): %v", ErrJSONParse, e.Length, e.Cause)
}

// Unwrap lets errors.Is match ErrJSONParse
func (e *ParseError) Unwrap() []error {
	return []error{ErrJSONParse, e.Cause}
}
