package errz

import (
	"fmt"
	"strings"

	"github.com/rascal-lang/rascalc/errors"
)

// StackFrame is one active call at the moment an error was raised.
type StackFrame struct {
	Function string
	Location errors.SourceLocation
}

func (f StackFrame) String() string {
	if f.Location.IsZero() {
		return f.Function
	}
	return fmt.Sprintf("%s at %s", f.Function, f.Location)
}

// FormatStackTrace renders frames innermost first, one per line.
func FormatStackTrace(frames []StackFrame) string {
	var b strings.Builder
	b.WriteString("stack trace:\n")
	for _, frame := range frames {
		b.WriteString("  ")
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
	return b.String()
}
