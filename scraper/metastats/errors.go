package metastats

import "fmt"

// Parse stages reported in ParseError.Stage.
const (
	StageDocument   = "document"
	StageNamer      = "namer"
	StageEnumerator = "enumerator"
	StageExtractor  = "extractor"
)

// FetchError represents a failure to retrieve a page.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ParseError represents an expected element or attribute missing from a page.
// Index is the zero-based position of the offending item, or -1.
type ParseError struct {
	Stage   string
	Index   int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	where := e.Stage
	if e.Index >= 0 {
		where = fmt.Sprintf("%s item %d", e.Stage, e.Index)
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse error (%s): %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error (%s): %s", where, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
