package streampath

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedOffset indicates the leading character is not a decimal digit.
	ErrMalformedOffset = errors.New("malformed offset digit")
	// ErrInvalidIV indicates fewer than 16 IV characters follow the offset.
	ErrInvalidIV = errors.New("invalid initialization vector")
	// ErrCiphertext indicates the payload is not valid base64 or not whole AES blocks.
	ErrCiphertext = errors.New("malformed ciphertext")
	// ErrPadding indicates invalid PKCS7 padding after decryption.
	ErrPadding = errors.New("invalid padding")
	// ErrUTF8 indicates the decrypted bytes are not valid UTF-8.
	ErrUTF8 = errors.New("decrypted text is not valid UTF-8")
)

// DecryptError reports which step of stream path decryption failed
type DecryptError struct {
	Op    string
	Err   error
	Cause error
}

// Error implements the error interface
func (e *DecryptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decrypt stream path (%s): %v: %v", e.Op, e.Err, e.Cause)
	}
	return fmt.Sprintf("decrypt stream path (%s): %v", e.Op, e.Err)
}

// Unwrap returns the sentinel error for errors.Is
func (e *DecryptError) Unwrap() error {
	return e.Err
}
