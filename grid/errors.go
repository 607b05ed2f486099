package grid

import "fmt"

// ParseError aborts parsing. Line is the 1-based source line, or 0 when the
// problem is not tied to one line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Msg)
	}
	return "parse error: " + e.Msg
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
