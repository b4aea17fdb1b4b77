// Package errors defines the diagnostics produced while compiling and
// running Rascal programs, along with a formatter that renders them.
package errors

import (
	"errors"
	"fmt"
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// MultiFormattableError is implemented by error collections, such as the
// parser's, that render as several diagnostics.
type MultiFormattableError interface {
	Error() string
	ToFormattedMultiple() []*FormattedError
}

// Render formats err for display. Errors that know how to describe
// themselves are rendered with source context; anything else falls back to
// its Error() text.
func Render(err error, useColor bool) string {
	formatter := NewFormatter(useColor)
	var multi MultiFormattableError
	if errors.As(err, &multi) {
		return formatter.FormatMultiple(multi.ToFormattedMultiple())
	}
	var formattable FormattableError
	if errors.As(err, &formattable) {
		return formatter.Format(formattable.ToFormatted())
	}
	return formatter.Format(&FormattedError{Kind: "error", Message: err.Error()})
}
