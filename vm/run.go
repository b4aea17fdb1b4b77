package vm

import (
	"context"

	"github.com/rascal-lang/rascalc/bytecode"
)

// Run the given code in a new Virtual Machine.
func Run(ctx context.Context, code *bytecode.Code, options ...Option) error {
	return New(code, options...).Run(ctx)
}
