package documents

import (
	"errors"
	"fmt"

	"github.com/ternarybob/fyde/internal/interfaces"
)

// Ingestion error kinds. Each failure is wrapped as "<kind>: <cause>" so errors.Is
// matches both the kind and the underlying cause.
var (
	ErrFileAccess        = errors.New("failed to access a file")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrInvalidSize       = errors.New("read size does not match the file size")
	ErrPathIsDir         = errors.New("path is a directory")
	ErrExtractText       = errors.New("failed to extract the text from the pdf")
	ErrRenderPreview     = errors.New("failed to render the preview")
	ErrGenerateID        = errors.New("failed to generate a document id")
	ErrStorage           = errors.New("storage error")

	// ErrNotFound is the storage sentinel; lookups of an unknown ID match both it and ErrStorage
	ErrNotFound = interfaces.ErrNotFound
)

// UnknownFileType is reported when content sniffing found no type at all
const UnknownFileType = "unknown"

// InvalidFileFormatError carries the sniffed type of rejected content
type InvalidFileFormatError struct {
	FileType string
	Cause    error
}

func (e *InvalidFileFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidFileFormat, e.FileType, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidFileFormat, e.FileType)
}

// Is makes errors.Is(err, ErrInvalidFileFormat) match
func (e *InvalidFileFormatError) Is(target error) bool {
	return target == ErrInvalidFileFormat
}

func (e *InvalidFileFormatError) Unwrap() error {
	return e.Cause
}

func wrap(kind, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}
