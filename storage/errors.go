package storage

import "fmt"

// Filesystem operations reported in FilesystemError.Op.
const (
	OpAppend = "append"
	OpCopy   = "copy"
	OpRead   = "read"
)

// FilesystemError represents a failure to open, append to, read or copy a report file.
type FilesystemError struct {
	Path    string
	Op      string
	Message string
	Cause   error
}

func (e *FilesystemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("filesystem error (%s %s): %s: %v", e.Op, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("filesystem error (%s %s): %s", e.Op, e.Path, e.Message)
}

func (e *FilesystemError) Unwrap() error {
	return e.Cause
}
