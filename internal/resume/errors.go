package resume

import "fmt"

// ParseError reports a problem loading or parsing the master resume.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("master resume %s:%d: %s", e.Path, e.Line, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("master resume %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("master resume %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
