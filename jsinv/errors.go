package jsinv

import (
	"errors"
	"fmt"
)

// ParseError reports source text the parser could not turn into a clean
// syntax tree. It is the only error Analyze returns for a given input once
// the options are valid.
type ParseError struct {
	Message string
	// Line and Column locate the offending node when HasPosition is set.
	Line        int
	Column      int
	HasPosition bool
	// Err is the underlying provider error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.HasPosition {
		return fmt.Sprintf("%s (%d:%d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func parseErrorAt(pos Position, format string, args ...any) *ParseError {
	return &ParseError{
		Message:     fmt.Sprintf(format, args...),
		Line:        pos.Line,
		Column:      pos.Column,
		HasPosition: true,
	}
}
