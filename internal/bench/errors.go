package bench

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotMapping   = errors.New("entry is not a mapping")
	ErrNoFunction   = errors.New("entry has no function name")
	ErrBadField     = errors.New("malformed field")
	ErrBadDatatype  = errors.New("unknown datatype")
	ErrEmptyEntries = errors.New("entry list is empty")
)

// ParseError reports a log line that could not be turned into a call.
type ParseError struct {
	Line  int    // 1-based line number, 0 when unknown
	Field string // Offending field, if any
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("bench: line %d: field %q: %v", e.Line, e.Field, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("bench: line %d: %v", e.Line, e.Err)
	case e.Field != "":
		return fmt.Sprintf("bench: field %q: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("bench: %v", e.Err)
	}
}

// Unwrap returns the cause.
func (e *ParseError) Unwrap() error { return e.Err }
