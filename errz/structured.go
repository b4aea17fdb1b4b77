// Package errz defines the structured errors raised while a compiled program
// runs on the MEPA machine.
package errz

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rascal-lang/rascalc/errors"
)

// ErrorKind represents the category of a runtime error.
type ErrorKind int

const (
	// ErrRuntime indicates a general runtime error, such as division by zero.
	ErrRuntime ErrorKind = iota
	// ErrStack indicates the memory stack overflowed or underflowed.
	ErrStack
	// ErrInput indicates a read instruction received unusable input.
	ErrInput
	// ErrInstruction indicates malformed code: an unknown opcode, a bad
	// operand or a jump to a label that is never placed.
	ErrInstruction
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrRuntime:
		return "runtime error"
	case ErrStack:
		return "stack error"
	case ErrInput:
		return "input error"
	case ErrInstruction:
		return "instruction error"
	default:
		return "error"
	}
}

// StructuredError is a runtime error with the source location of the
// instruction that failed and the chain of active calls.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Code     errors.ErrorCode
	IP       int
	Location errors.SourceLocation
	Stack    []StackFrame
	Cause    error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (%d:%d)", e.Kind.String(), e.Message, e.Location.Line, e.Location.Column)
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns a human-friendly error message with the
// offending source line and the call stack.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Error())
	msg.WriteString("\n")

	if e.Location.Source != "" {
		msg.WriteString(" | ")
		msg.WriteString(e.Location.Source)
		msg.WriteString("\n")
		if e.Location.Column > 0 {
			msg.WriteString(" | ")
			msg.WriteString(strings.Repeat(" ", e.Location.Column-1))
			msg.WriteString("^\n")
		}
	}

	if len(e.Stack) > 0 {
		msg.WriteString("\n")
		msg.WriteString(FormatStackTrace(e.Stack))
	}
	return msg.String()
}

// ToFormatted converts the error for display by errors.Formatter.
func (e *StructuredError) ToFormatted() *errors.FormattedError {
	fe := &errors.FormattedError{
		Code:     e.Code,
		Kind:     "runtime error",
		Message:  e.Message,
		Filename: e.Location.Filename,
		Line:     e.Location.Line,
		Column:   e.Location.Column,
	}
	if e.Location.Source != "" {
		fe.SourceLines = []errors.SourceLineEntry{
			{Number: e.Location.Line, Text: e.Location.Source, IsMain: true},
		}
	}
	if len(e.Stack) > 1 {
		fe.Note = "called from " + e.Stack[1].String()
	}
	return fe
}

// NewStructuredErrorf creates a new StructuredError with a formatted message.
func NewStructuredErrorf(kind ErrorKind, code errors.ErrorCode, loc errors.SourceLocation, stack []StackFrame, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Code:     code,
		Location: loc,
		Stack:    stack,
	}
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// WithIP records the position of the failing instruction.
func (e *StructuredError) WithIP(ip int) *StructuredError {
	e.IP = ip
	return e
}
