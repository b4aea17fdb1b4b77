package errors

import (
	"fmt"

	"github.com/rascal-lang/rascalc/types"
)

// SemanticError is implemented by every error the analyzer reports. Use
// errors.As with one of the concrete types below to select a kind.
type SemanticError interface {
	error
	Code() ErrorCode
	Location() SourceLocation
	ToFormatted() *FormattedError
}

// semanticError carries the fields shared by all semantic error kinds.
type semanticError struct {
	code        ErrorCode
	loc         SourceLocation
	msg         string
	suggestions []Suggestion
	note        string
}

func (e *semanticError) Code() ErrorCode { return e.code }

func (e *semanticError) Location() SourceLocation { return e.loc }

// Message returns the bare message without location.
func (e *semanticError) Message() string { return e.msg }

// CompileError returns the generic rendering form of the error.
func (e *semanticError) CompileError() *CompileError {
	ce := newCompileError(e.code, e.loc, e.msg)
	ce.Suggestions = e.suggestions
	ce.Note = e.note
	return ce
}

func (e *semanticError) Error() string {
	return e.CompileError().Error()
}

func (e *semanticError) ToFormatted() *FormattedError {
	return e.CompileError().ToFormatted()
}

func (e *semanticError) FriendlyErrorMessage() string {
	return e.CompileError().FriendlyErrorMessage()
}

// ScopeDepthExceededError is raised when a third nested scope is opened.
type ScopeDepthExceededError struct {
	semanticError
	Max int
}

func NewScopeDepthExceededError(loc SourceLocation, limit int) *ScopeDepthExceededError {
	return &ScopeDepthExceededError{
		semanticError: semanticError{
			code: E2001,
			loc:  loc,
			msg:  fmt.Sprintf("scope depth exceeded: at most %d nested scopes are allowed", limit),
			note: "procedures and functions may not be declared inside other procedures or functions",
		},
		Max: limit,
	}
}

// DuplicateSymbolError is raised when a name is declared twice in one scope.
type DuplicateSymbolError struct {
	semanticError
	Name string
}

func NewDuplicateSymbolError(loc SourceLocation, name string) *DuplicateSymbolError {
	return &DuplicateSymbolError{
		semanticError: semanticError{
			code: E2002,
			loc:  loc,
			msg:  fmt.Sprintf("'%s' is already declared", name),
		},
		Name: name,
	}
}

// UndefinedSymbolError is raised when a name resolves in no active scope.
type UndefinedSymbolError struct {
	semanticError
	Name string
}

// NewUndefinedSymbolError creates the error, attaching "did you mean" hints
// drawn from the names that are visible at the point of use.
func NewUndefinedSymbolError(loc SourceLocation, name string, visible []string) *UndefinedSymbolError {
	return &UndefinedSymbolError{
		semanticError: semanticError{
			code:        E2003,
			loc:         loc,
			msg:         fmt.Sprintf("'%s' is not defined", name),
			suggestions: SuggestSimilar(name, visible),
		},
		Name: name,
	}
}

// Suggestions returns the similar names offered with the error.
func (e *UndefinedSymbolError) Suggestions() []Suggestion {
	return e.suggestions
}

// TypeNotDefinedError is raised when a declaration names an unknown type.
type TypeNotDefinedError struct {
	semanticError
	Name string
}

func NewTypeNotDefinedError(loc SourceLocation, name string) *TypeNotDefinedError {
	return &TypeNotDefinedError{
		semanticError: semanticError{
			code:        E2004,
			loc:         loc,
			msg:         fmt.Sprintf("'%s' is not a valid rascal type", name),
			suggestions: SuggestSimilar(name, types.Names()),
		},
		Name: name,
	}
}

// ArityMismatchError is raised when a call supplies the wrong number of
// arguments.
type ArityMismatchError struct {
	semanticError
	Name     string
	Expected int
	Actual   int
}

func NewArityMismatchError(loc SourceLocation, name string, expected, actual int) *ArityMismatchError {
	return &ArityMismatchError{
		semanticError: semanticError{
			code: E2005,
			loc:  loc,
			msg: fmt.Sprintf("the number of parameters (%d) differs from the number of arguments (%d) in the call to '%s'",
				expected, actual, name),
		},
		Name:     name,
		Expected: expected,
		Actual:   actual,
	}
}

// NotCallableError is raised when a name is used as a kind of symbol it is
// not: calling a variable, reading a procedure, assigning to a function.
type NotCallableError struct {
	semanticError
	Name     string
	Expected string
	Actual   string
}

func NewNotCallableError(loc SourceLocation, name, expected, actual string) *NotCallableError {
	return &NotCallableError{
		semanticError: semanticError{
			code: E2006,
			loc:  loc,
			msg:  fmt.Sprintf("'%s' is not a %s", name, expected),
			note: fmt.Sprintf("'%s' is declared as a %s", name, actual),
		},
		Name:     name,
		Expected: expected,
		Actual:   actual,
	}
}

// MismatchedTypesError is raised when two types that must agree do not.
type MismatchedTypesError struct {
	semanticError
	Left  types.Type
	Right types.Type
}

func NewMismatchedTypesError(loc SourceLocation, left, right types.Type) *MismatchedTypesError {
	return &MismatchedTypesError{
		semanticError: semanticError{
			code: E2007,
			loc:  loc,
			msg:  fmt.Sprintf("'%s' and '%s' are not compatible", left, right),
		},
		Left:  left,
		Right: right,
	}
}

// ConditionalNotBooleanError is raised when an if or while condition is not
// a boolean expression.
type ConditionalNotBooleanError struct {
	semanticError
	Statement string
	Actual    types.Type
}

func NewConditionalNotBooleanError(loc SourceLocation, statement string, actual types.Type) *ConditionalNotBooleanError {
	return &ConditionalNotBooleanError{
		semanticError: semanticError{
			code: E2008,
			loc:  loc,
			msg:  fmt.Sprintf("the %s conditional does not resolve to a boolean", statement),
			note: fmt.Sprintf("the condition has type '%s'", actual),
		},
		Statement: statement,
		Actual:    actual,
	}
}

// ExpectedReferenceError is raised when an argument bound to a by-reference
// parameter is not a plain variable.
type ExpectedReferenceError struct {
	semanticError
	Index int
}

func NewExpectedReferenceError(loc SourceLocation, index int) *ExpectedReferenceError {
	return &ExpectedReferenceError{
		semanticError: semanticError{
			code: E2009,
			loc:  loc,
			msg:  fmt.Sprintf("expected argument on index %d to be a reference", index),
			note: "arguments for var parameters must be variable names",
		},
		Index: index,
	}
}
