package export

import "fmt"

// ExportError reports a failed serialization. The underlying cause is kept
// for the caller; no partial output file survives a failed export.
type ExportError struct {
	FileName string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.FileName, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
