package vm

import (
	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/errz"
)

// frame records an active call for stack traces. The call's memory frame
// itself lives on the machine's memory stack.
type frame struct {
	label  bytecode.Label
	callIP int // position of the CHPR instruction
}

// captureStack builds a stack trace from the active calls, innermost first.
func (vm *VirtualMachine) captureStack() []errz.StackFrame {
	frames := make([]errz.StackFrame, 0, len(vm.frames)+1)
	ip := vm.currentIP()
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		frames = append(frames, errz.StackFrame{
			Function: f.label.String(),
			Location: vm.sourceLocation(ip),
		})
		ip = f.callIP
	}
	name := vm.code.Name()
	if name == "" {
		name = "<main>"
	}
	frames = append(frames, errz.StackFrame{
		Function: name,
		Location: vm.sourceLocation(ip),
	})
	return frames
}

// currentIP returns the position of the instruction being executed.
func (vm *VirtualMachine) currentIP() int {
	if vm.ip > 0 {
		return vm.ip - 1
	}
	return 0
}

func (vm *VirtualMachine) sourceLocation(ip int) errors.SourceLocation {
	loc := vm.code.LocationAt(ip)
	if loc.IsZero() {
		return errors.SourceLocation{Filename: vm.code.Filename()}
	}
	return errors.SourceLocation{
		Filename: vm.code.Filename(),
		Line:     loc.Line,
		Column:   loc.Column,
		Source:   vm.code.GetSourceLine(loc.Line),
	}
}

// runtimeError creates a StructuredError located at the current
// instruction.
func (vm *VirtualMachine) runtimeError(kind errz.ErrorKind, code errors.ErrorCode, format string, args ...any) *errz.StructuredError {
	ip := vm.currentIP()
	return errz.NewStructuredErrorf(kind, code, vm.sourceLocation(ip), vm.captureStack(), format, args...).WithIP(ip)
}
