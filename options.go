package rascalc

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/rascal-lang/rascalc/compiler"
	"github.com/rascal-lang/rascalc/parser"
	"github.com/rascal-lang/rascalc/vm"
)

// Option configures a Rascal compilation or execution.
type Option func(*options)

type options struct {
	filename string
	log      zerolog.Logger
	input    io.Reader
	output   io.Writer
	observer vm.Observer
	maxStack int
}

func collectOptions(opts ...Option) *options {
	o := &options{log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) parserOpts() []parser.Option {
	var opts []parser.Option
	if o.filename != "" {
		opts = append(opts, parser.WithFilename(o.filename))
	}
	return opts
}

func (o *options) compilerOpts(source string) []compiler.Option {
	opts := []compiler.Option{
		compiler.WithSource(source),
		compiler.WithLogger(o.log),
	}
	if o.filename != "" {
		opts = append(opts, compiler.WithFilename(o.filename))
	}
	return opts
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{vm.WithLogger(o.log)}
	if o.input != nil {
		opts = append(opts, vm.WithInput(o.input))
	}
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	if o.maxStack > 0 {
		opts = append(opts, vm.WithMaxStackDepth(o.maxStack))
	}
	return opts
}

// WithFilename sets the filename for the source code being compiled.
// This is used for error messages and stack traces.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithLogger sets the logger passed to the compiler and the VM.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// WithInput sets the reader that read statements consume.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithOutput sets the writer that write statements print to.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithMaxStackDepth limits the number of memory cells a running program
// may use.
func WithMaxStackDepth(depth int) Option {
	return func(o *options) {
		o.maxStack = depth
	}
}
