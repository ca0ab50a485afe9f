// CLAUDE:SUMMARY Sentinel errors and the ImportError type for docpipe: unsupported format, size cap, read failure, decode failure.
package docpipe

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when the declared type is not accepted.
var ErrUnsupportedFormat = errors.New("docpipe: unsupported format")

// ErrFileTooLarge is returned when the input exceeds Config.MaxFileSize.
// It is raised before any parsing.
var ErrFileTooLarge = errors.New("docpipe: file too large")

// ErrRead is returned when the input stream cannot be read.
var ErrRead = errors.New("docpipe: read failed")

// ErrLegacyWord is the cause of an ImportError for binary .doc files.
var ErrLegacyWord = errors.New("legacy binary Word format (.doc) is not supported, save as .docx")

// ErrNoPages is the cause of an ImportError for PDFs without pages.
var ErrNoPages = errors.New("document has no pages")

// ImportError reports that a document could not be decoded at all.
type ImportError struct {
	Format Format
	Cause  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("docpipe: import %s: %v", e.Format, e.Cause)
}

func (e *ImportError) Unwrap() error { return e.Cause }

func importErr(f Format, cause error) error {
	return &ImportError{Format: f, Cause: cause}
}
