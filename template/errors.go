package template

import (
	"errors"
	"fmt"
)

// ErrInvalidArchive indicates the uploaded file is not a valid zip package.
var ErrInvalidArchive = errors.New("invalid archive: not a zip package")

// ArchiveError reports a failure while opening or extracting the uploaded
// package. It is surfaced to callers as an upload rejection.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// XMLParseError reports malformed markup in a single OOXML part. At the slide
// level it degrades to a fallback slide; for mandatory parts it is fatal.
type XMLParseError struct {
	Part string
	Err  error
}

func (e *XMLParseError) Error() string {
	return fmt.Sprintf("parse xml part %s: %v", e.Part, e.Err)
}

func (e *XMLParseError) Unwrap() error {
	return e.Err
}

// StructureError reports a required part missing from the package entirely.
type StructureError struct {
	Missing string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s not found in template", e.Missing)
}
