package intake

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxSize is the largest accepted upload in bytes (10 MiB).
const MaxSize int64 = 10 * 1024 * 1024

var (
	// ErrInvalidType indicates the upload is not a JPEG, PNG or WebP image.
	ErrInvalidType = errors.New("intake: invalid image type")
	// ErrTooLarge indicates the upload exceeds MaxSize.
	ErrTooLarge = errors.New("intake: image too large")
)

var acceptedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Code identifies a validation failure for user-facing messaging.
type Code string

const (
	CodeInvalidType Code = "invalid_type"
	CodeTooLarge    Code = "too_large"
)

// ValidationError describes why an upload was rejected. It unwraps to ErrInvalidType or
// ErrTooLarge.
type ValidationError struct {
	Code     Code
	MIMEType string
	Size     int64
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeTooLarge:
		return fmt.Sprintf("%s: %d bytes exceeds %d", ErrTooLarge, e.Size, MaxSize)
	default:
		return fmt.Sprintf("%s: %q", ErrInvalidType, e.MIMEType)
	}
}

func (e *ValidationError) Unwrap() error {
	if e.Code == CodeTooLarge {
		return ErrTooLarge
	}
	return ErrInvalidType
}

// MessageKey is the locale key of the message shown for this error.
func (e *ValidationError) MessageKey() string {
	return "photoUpload.errors." + string(e.Code)
}

// File is an uploaded image payload.
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
}

// Validate checks the type and size of f. When the declared type is empty it is sniffed
// from the payload. The returned file carries the normalized type.
func Validate(f File) (File, error) {
	mimeType := normalizeType(f.MIMEType)
	if mimeType == "" && len(f.Data) > 0 {
		mimeType = normalizeType(http.DetectContentType(f.Data))
	}
	if _, ok := acceptedTypes[mimeType]; !ok {
		return File{}, &ValidationError{Code: CodeInvalidType, MIMEType: f.MIMEType, Size: f.Size}
	}
	size := f.Size
	if size < int64(len(f.Data)) {
		size = int64(len(f.Data))
	}
	if size > MaxSize {
		return File{}, &ValidationError{Code: CodeTooLarge, MIMEType: mimeType, Size: size}
	}
	f.MIMEType = mimeType
	f.Size = size
	return f, nil
}

func normalizeType(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if i := strings.IndexByte(v, ';'); i != -1 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
