package dataprocessing

import (
	"fmt"
)

// MissingColumnError reports that a mandatory sales column could not be located
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("couldn't find '%s' column", e.Column)
}

// MissingFieldError reports that a field required on every row is absent from
// the report header
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("report has no '%s' column", e.Field)
}

// ParseError reports input that could not be read as a table.
// Line is 1-based and zero when the failure is not tied to a line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse report at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("failed to parse report: %v", e.Err)
}

// Unwrap allows errors.Is and errors.As to reach the reader error
func (e *ParseError) Unwrap() error {
	return e.Err
}
