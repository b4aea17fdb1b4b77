package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithInput sets where LEIT reads values from. Values are separated by
// whitespace; integers, "true" and "false" are accepted. The default input
// is empty.
func WithInput(r io.Reader) Option {
	return func(vm *VirtualMachine) {
		vm.input = r
	}
}

// WithOutput sets where IMPR writes values, one per line. The default
// discards output.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.output = w
	}
}

// WithLogger sets the logger that receives debug events about execution.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.log = logger
	}
}

// WithMaxStackDepth sets the number of memory cells available to the
// program. Exceeding it raises a stack overflow. The default is
// MaxStackDepth.
func WithMaxStackDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxStackDepth = depth
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution. The interval is specified in number of instructions. A value of
// 0 disables deterministic checking, relying only on the background
// goroutine that monitors the context. The default is
// DefaultContextCheckInterval.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for VM execution events.
// The observer receives callbacks for instruction steps, procedure calls
// and returns. Returning false from any observer method halts execution
// immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
