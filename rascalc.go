// Package rascalc compiles Rascal programs into MEPA instructions and runs
// them.
//
// Compile parses and analyzes a program in one call:
//
//	code, err := rascalc.Compile(ctx, source, rascalc.WithFilename("fact.ras"))
//
// The resulting *bytecode.Code can be rendered with the dis package or
// executed with Run. Exec does both steps at once.
package rascalc

import (
	"context"

	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/compiler"
	"github.com/rascal-lang/rascalc/parser"
	"github.com/rascal-lang/rascalc/vm"
)

// Compile parses and compiles source code into MEPA instructions.
// The returned Code is immutable and safe for concurrent use.
//
// Syntax errors are reported as *parser.Errors. The first semantic error
// aborts compilation and is returned as one of the typed errors of the
// errors package.
func Compile(ctx context.Context, source string, opts ...Option) (*bytecode.Code, error) {
	o := collectOptions(opts...)
	program, err := parser.Parse(ctx, source, o.parserOpts()...)
	if err != nil {
		return nil, err
	}
	code, err := compiler.Compile(program, o.compilerOpts(source)...)
	if err != nil {
		return nil, err
	}
	o.log.Debug().
		Str("program", code.Name()).
		Int("instructions", code.InstructionCount()).
		Msg("compiled")
	return code, nil
}

// Run executes compiled code. Each call creates a fresh machine, so the same
// Code may be run concurrently.
func Run(ctx context.Context, code *bytecode.Code, opts ...Option) error {
	o := collectOptions(opts...)
	return vm.Run(ctx, code, o.vmOpts()...)
}

// Exec compiles and runs source code. It is equivalent to Compile followed
// by Run.
func Exec(ctx context.Context, source string, opts ...Option) error {
	code, err := Compile(ctx, source, opts...)
	if err != nil {
		return err
	}
	return Run(ctx, code, opts...)
}
