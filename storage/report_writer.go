package storage

import (
	"os"
	"path/filepath"
)

// ReportWriter appends text to a dated report file.
// Every Append opens the file, writes and closes it again, so a crash
// mid-run leaves a valid prefix on disk. The file does not exist until the
// first Append.
type ReportWriter struct {
	path string
}

// NewReportWriter binds a writer to identifier inside dir.
func NewReportWriter(dir, identifier string) *ReportWriter {
	return &ReportWriter{path: filepath.Join(dir, identifier)}
}

// Path returns the report file path.
func (w *ReportWriter) Path() string {
	return w.path
}

// Append writes text to the end of the report, creating it if needed.
func (w *ReportWriter) Append(text string) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &FilesystemError{Path: w.path, Op: OpAppend, Message: "open report", Cause: err}
	}

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return &FilesystemError{Path: w.path, Op: OpAppend, Message: "write report", Cause: err}
	}

	if err := f.Close(); err != nil {
		return &FilesystemError{Path: w.path, Op: OpAppend, Message: "close report", Cause: err}
	}
	return nil
}
