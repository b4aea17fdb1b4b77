package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Parse errors
//   - E2xxx: Semantic errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1003 ErrorCode = "E1003" // Invalid character
	E1004 ErrorCode = "E1004" // Missing expression
	E1006 ErrorCode = "E1006" // Expected identifier
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1009 ErrorCode = "E1009" // Maximum nesting depth exceeded
	E1011 ErrorCode = "E1011" // Unterminated block comment

	// Semantic errors (E2xxx)
	E2001 ErrorCode = "E2001" // Scope depth exceeded
	E2002 ErrorCode = "E2002" // Duplicate symbol
	E2003 ErrorCode = "E2003" // Undefined symbol
	E2004 ErrorCode = "E2004" // Type not defined
	E2005 ErrorCode = "E2005" // Arity mismatch
	E2006 ErrorCode = "E2006" // Not callable / wrong symbol kind
	E2007 ErrorCode = "E2007" // Mismatched types
	E2008 ErrorCode = "E2008" // Conditional not boolean
	E2009 ErrorCode = "E2009" // Expected reference

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Division by zero
	E3002 ErrorCode = "E3002" // Stack overflow
	E3003 ErrorCode = "E3003" // Stack underflow
	E3004 ErrorCode = "E3004" // Invalid input
	E3005 ErrorCode = "E3005" // Undefined label
	E3006 ErrorCode = "E3006" // Invalid instruction
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1003: "invalid character",
	E1004: "missing expression",
	E1006: "expected identifier",
	E1008: "invalid number literal",
	E1009: "maximum nesting depth exceeded",
	E1011: "unterminated block comment",

	E2001: "scope depth exceeded",
	E2002: "duplicate symbol",
	E2003: "undefined symbol",
	E2004: "type not defined",
	E2005: "arity mismatch",
	E2006: "not callable",
	E2007: "mismatched types",
	E2008: "conditional not boolean",
	E2009: "expected reference",

	E3001: "division by zero",
	E3002: "stack overflow",
	E3003: "stack underflow",
	E3004: "invalid input",
	E3005: "undefined label",
	E3006: "invalid instruction",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '2':
		return "semantic"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
