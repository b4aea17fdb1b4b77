// Package vm provides a VirtualMachine that executes compiled MEPA code.
//
// The machine has a memory stack M of integer cells, a stack pointer s, an
// instruction pointer i and a display register D[k] per lexical level,
// holding the base address of the active frame at that level. Booleans are
// the cells 1 and 0.
package vm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/errz"
	"github.com/rascal-lang/rascalc/op"
)

const (
	// MaxStackDepth is the default number of memory cells.
	MaxStackDepth = 1 << 16

	// MaxDisplayLevels is the number of display registers.
	MaxDisplayLevels = 8

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

type VirtualMachine struct {
	ip      int // instruction pointer
	sp      int // stack pointer, -1 when the stack is empty
	halt    int32
	code    *bytecode.Code
	program []bytecode.Instruction
	memory  []int64
	display [MaxDisplayLevels]int
	frames  []frame
	steps   int64

	input   io.Reader
	scanner *bufio.Scanner
	output  io.Writer
	log     zerolog.Logger

	maxStackDepth        int
	contextCheckInterval int
	observer             Observer
	observerConfig       ObserverConfig

	running  bool
	runMutex sync.Mutex
}

// New creates a new Virtual Machine that runs code.
func New(code *bytecode.Code, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		code:                 code,
		sp:                   -1,
		input:                strings.NewReader(""),
		output:               io.Discard,
		log:                  zerolog.Nop(),
		maxStackDepth:        MaxStackDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

// Run executes the program from its first instruction until PARA, an error
// or the cancellation of ctx. The input reader is shared across runs.
func (vm *VirtualMachine) Run(ctx context.Context) (err error) {
	if vm.code == nil {
		return fmt.Errorf("no code available")
	}
	if err := vm.start(ctx); err != nil {
		return err
	}
	done := make(chan struct{})
	defer func() {
		close(done)
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		vm.stop()
	}()
	if doneChan := ctx.Done(); doneChan != nil {
		go func() {
			select {
			case <-doneChan:
				atomic.StoreInt32(&vm.halt, 1)
			case <-done:
			}
		}()
	}

	vm.log.Debug().
		Str("program", vm.code.Name()).
		Int("instructions", len(vm.program)).
		Msg("running")
	err = vm.eval(ctx)
	vm.log.Debug().Int64("steps", vm.steps).Err(err).Msg("stopped")
	return err
}

func (vm *VirtualMachine) start(ctx context.Context) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	vm.running = true
	vm.halt = 0
	vm.ip = 0
	vm.sp = -1
	vm.steps = 0
	vm.frames = vm.frames[:0]
	vm.display = [MaxDisplayLevels]int{}
	vm.program = vm.code.Instructions()
	if vm.maxStackDepth <= 0 {
		vm.maxStackDepth = MaxStackDepth
	}
	if len(vm.memory) != vm.maxStackDepth {
		vm.memory = make([]int64, vm.maxStackDepth)
	}
	if vm.scanner == nil {
		vm.scanner = bufio.NewScanner(vm.input)
		vm.scanner.Split(bufio.ScanWords)
	}
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

// Steps returns the number of instructions executed by the last run.
func (vm *VirtualMachine) Steps() int64 {
	return vm.steps
}

// Stack returns a copy of the memory cells in use, bottom first.
func (vm *VirtualMachine) Stack() []int64 {
	if vm.sp < 0 {
		return nil
	}
	return append([]int64(nil), vm.memory[:vm.sp+1]...)
}

func (vm *VirtualMachine) eval(ctx context.Context) error {
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()
	lastLine := -1

	for {
		if atomic.LoadInt32(&vm.halt) == 1 {
			return ctx.Err()
		}

		// Deterministic check of ctx.Done() every N instructions, regardless
		// of goroutine scheduling.
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					atomic.StoreInt32(&vm.halt, 1)
					return ctx.Err()
				default:
				}
			}
		}

		if vm.ip < 0 || vm.ip >= len(vm.program) {
			return vm.runtimeError(errz.ErrInstruction, errors.E3006,
				"instruction pointer %d is outside the program", vm.ip)
		}
		instr := vm.program[vm.ip]

		if vm.observer != nil && !vm.step(instr, &lastLine) {
			return fmt.Errorf("execution halted by observer")
		}

		// Advance before executing so that jumps simply overwrite ip.
		vm.ip++
		vm.steps++

		switch instr.Opcode {
		case op.EnterProgram:
			vm.sp = -1
			vm.display[0] = 0
		case op.Halt:
			return nil
		case op.Alloc:
			n := instr.Operands[0]
			if err := vm.reserve(n); err != nil {
				return err
			}
		case op.Dealloc:
			n := instr.Operands[0]
			if vm.sp-n < -1 {
				return vm.underflow()
			}
			vm.sp -= n
		case op.LoadConst:
			if err := vm.push(int64(instr.Operands[0])); err != nil {
				return err
			}
		case op.LoadValue:
			addr, err := vm.address(instr.Operands[0], instr.Operands[1])
			if err != nil {
				return err
			}
			if err := vm.push(vm.memory[addr]); err != nil {
				return err
			}
		case op.StoreValue:
			addr, err := vm.address(instr.Operands[0], instr.Operands[1])
			if err != nil {
				return err
			}
			value, err := vm.pop()
			if err != nil {
				return err
			}
			vm.memory[addr] = value
		case op.LoadAddress:
			addr, err := vm.address(instr.Operands[0], instr.Operands[1])
			if err != nil {
				return err
			}
			if err := vm.push(int64(addr)); err != nil {
				return err
			}
		case op.LoadIndirect:
			addr, err := vm.indirect(instr.Operands[0], instr.Operands[1])
			if err != nil {
				return err
			}
			if err := vm.push(vm.memory[addr]); err != nil {
				return err
			}
		case op.StoreIndirect:
			addr, err := vm.indirect(instr.Operands[0], instr.Operands[1])
			if err != nil {
				return err
			}
			value, err := vm.pop()
			if err != nil {
				return err
			}
			vm.memory[addr] = value
		case op.Add, op.Sub, op.Mul, op.Div, op.And, op.Or,
			op.Equal, op.NotEqual, op.Less, op.LessEqual, op.Greater, op.GreaterEqual:
			if err := vm.binary(instr.Opcode); err != nil {
				return err
			}
		case op.Negate:
			value, err := vm.pop()
			if err != nil {
				return err
			}
			vm.mustPush(-value)
		case op.Not:
			value, err := vm.pop()
			if err != nil {
				return err
			}
			vm.mustPush(boolCell(value == 0))
		case op.Read:
			value, err := vm.read()
			if err != nil {
				return err
			}
			if err := vm.push(value); err != nil {
				return err
			}
		case op.Print:
			value, err := vm.pop()
			if err != nil {
				return err
			}
			if _, err := io.WriteString(vm.output, strconv.FormatInt(value, 10)+"\n"); err != nil {
				return vm.runtimeError(errz.ErrRuntime, "", "write failed: %v", err).WithCause(err)
			}
		case op.Jump:
			if err := vm.jump(bytecode.Label(instr.Operands[0])); err != nil {
				return err
			}
		case op.JumpIfFalse:
			value, err := vm.pop()
			if err != nil {
				return err
			}
			if value == 0 {
				if err := vm.jump(bytecode.Label(instr.Operands[0])); err != nil {
					return err
				}
			}
		case op.Label:
		case op.Call:
			if err := vm.call(bytecode.Label(instr.Operands[0]), instr.Operands[1]); err != nil {
				return err
			}
		case op.EnterProcedure:
			k := instr.Operands[0]
			if err := vm.checkLevel(k); err != nil {
				return err
			}
			if err := vm.push(int64(vm.display[k])); err != nil {
				return err
			}
			vm.display[k] = vm.sp + 1
		case op.Return:
			if err := vm.ret(instr.Operands[0], instr.Operands[1]); err != nil {
				return err
			}
		default:
			return vm.runtimeError(errz.ErrInstruction, errors.E3006, "invalid instruction %s", instr.Opcode)
		}
	}
}

// step reports the instruction to the observer according to its config.
func (vm *VirtualMachine) step(instr bytecode.Instruction, lastLine *int) bool {
	cfg := vm.observerConfig
	loc := vm.code.LocationAt(vm.ip)
	switch cfg.StepMode {
	case StepNone:
		return true
	case StepSampled:
		if vm.steps%int64(cfg.SampleInterval) != 0 {
			return true
		}
	case StepOnLine:
		if loc.Line == *lastLine {
			return true
		}
		*lastLine = loc.Line
	}
	return vm.observer.OnStep(StepEvent{
		IP:         vm.ip,
		Opcode:     instr.Opcode,
		OpcodeName: instr.Opcode.String(),
		Location:   loc,
		StackDepth: vm.sp + 1,
		FrameDepth: len(vm.frames),
	})
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (vm *VirtualMachine) binary(opcode op.Code) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}
	var result int64
	switch opcode {
	case op.Add:
		result = left + right
	case op.Sub:
		result = left - right
	case op.Mul:
		result = left * right
	case op.Div:
		if right == 0 {
			return vm.runtimeError(errz.ErrRuntime, errors.E3001, "division by zero")
		}
		result = left / right
	case op.And:
		result = boolCell(left != 0 && right != 0)
	case op.Or:
		result = boolCell(left != 0 || right != 0)
	case op.Equal:
		result = boolCell(left == right)
	case op.NotEqual:
		result = boolCell(left != right)
	case op.Less:
		result = boolCell(left < right)
	case op.LessEqual:
		result = boolCell(left <= right)
	case op.Greater:
		result = boolCell(left > right)
	case op.GreaterEqual:
		result = boolCell(left >= right)
	}
	vm.mustPush(result)
	return nil
}

// call implements CHPR: push the return address and the caller's level,
// then jump to the callee.
func (vm *VirtualMachine) call(label bytecode.Label, level int) error {
	target, ok := vm.code.LabelPosition(label)
	if !ok {
		return vm.undefinedLabel(label)
	}
	if err := vm.push(int64(vm.ip)); err != nil {
		return err
	}
	if err := vm.push(int64(level)); err != nil {
		return err
	}
	vm.frames = append(vm.frames, frame{label: label, callIP: vm.ip - 1})
	if vm.observer != nil && vm.observerConfig.ObserveCalls {
		if !vm.observer.OnCall(CallEvent{
			Label:      label,
			Location:   vm.code.LocationAt(vm.ip - 1),
			FrameDepth: len(vm.frames),
		}) {
			return fmt.Errorf("execution halted by observer")
		}
	}
	vm.ip = target
	return nil
}

// ret implements RTPR: restore the display, pop the frame and the
// parameters, and return to the caller.
func (vm *VirtualMachine) ret(level, params int) error {
	if err := vm.checkLevel(level); err != nil {
		return err
	}
	if vm.sp-(params+3) < -1 {
		return vm.underflow()
	}
	vm.display[level] = int(vm.memory[vm.sp])
	returnIP := int(vm.memory[vm.sp-2])
	vm.sp -= params + 3

	var label bytecode.Label
	if n := len(vm.frames); n > 0 {
		label = vm.frames[n-1].label
		vm.frames = vm.frames[:n-1]
	}
	if vm.observer != nil && vm.observerConfig.ObserveReturns {
		if !vm.observer.OnReturn(ReturnEvent{
			Label:      label,
			Location:   vm.code.LocationAt(vm.ip - 1),
			FrameDepth: len(vm.frames),
		}) {
			return fmt.Errorf("execution halted by observer")
		}
	}
	vm.ip = returnIP
	return nil
}

func (vm *VirtualMachine) jump(label bytecode.Label) error {
	target, ok := vm.code.LabelPosition(label)
	if !ok {
		return vm.undefinedLabel(label)
	}
	vm.ip = target
	return nil
}

// read implements LEIT, returning the next value from the input.
func (vm *VirtualMachine) read() (int64, error) {
	if !vm.scanner.Scan() {
		if err := vm.scanner.Err(); err != nil {
			return 0, vm.runtimeError(errz.ErrInput, errors.E3004, "read failed: %v", err).WithCause(err)
		}
		return 0, vm.runtimeError(errz.ErrInput, errors.E3004, "unexpected end of input")
	}
	word := vm.scanner.Text()
	switch strings.ToLower(word) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	value, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return 0, vm.runtimeError(errz.ErrInput, errors.E3004, "invalid input %q: expected an integer or boolean", word).WithCause(err)
	}
	return value, nil
}

// Memory helpers

func (vm *VirtualMachine) push(value int64) error {
	if vm.sp+1 >= len(vm.memory) {
		return vm.overflow()
	}
	vm.sp++
	vm.memory[vm.sp] = value
	return nil
}

// mustPush pushes into a cell that a preceding pop freed.
func (vm *VirtualMachine) mustPush(value int64) {
	vm.sp++
	vm.memory[vm.sp] = value
}

func (vm *VirtualMachine) pop() (int64, error) {
	if vm.sp < 0 {
		return 0, vm.underflow()
	}
	value := vm.memory[vm.sp]
	vm.sp--
	return value, nil
}

// reserve implements AMEM. New cells start at zero.
func (vm *VirtualMachine) reserve(n int) error {
	if n < 0 {
		return vm.runtimeError(errz.ErrInstruction, errors.E3006, "invalid allocation size %d", n)
	}
	if vm.sp+n >= len(vm.memory) {
		return vm.overflow()
	}
	clear(vm.memory[vm.sp+1 : vm.sp+1+n])
	vm.sp += n
	return nil
}

// address returns D[level]+offset, checked against the cells in use.
func (vm *VirtualMachine) address(level, offset int) (int, error) {
	if err := vm.checkLevel(level); err != nil {
		return 0, err
	}
	return vm.checkAddress(vm.display[level] + offset)
}

// indirect returns the address stored in the cell at D[level]+offset.
func (vm *VirtualMachine) indirect(level, offset int) (int, error) {
	cell, err := vm.address(level, offset)
	if err != nil {
		return 0, err
	}
	return vm.checkAddress(int(vm.memory[cell]))
}

func (vm *VirtualMachine) checkAddress(addr int) (int, error) {
	if addr < 0 || addr > vm.sp {
		return 0, vm.runtimeError(errz.ErrStack, errors.E3003, "invalid memory address %d (stack has %d cells)", addr, vm.sp+1)
	}
	return addr, nil
}

func (vm *VirtualMachine) checkLevel(level int) error {
	if level < 0 || level >= MaxDisplayLevels {
		return vm.runtimeError(errz.ErrInstruction, errors.E3006, "invalid lexical level %d", level)
	}
	return nil
}

func (vm *VirtualMachine) overflow() error {
	return vm.runtimeError(errz.ErrStack, errors.E3002, "stack overflow (limit %d cells)", len(vm.memory))
}

func (vm *VirtualMachine) underflow() error {
	return vm.runtimeError(errz.ErrStack, errors.E3003, "stack underflow")
}

func (vm *VirtualMachine) undefinedLabel(label bytecode.Label) error {
	return vm.runtimeError(errz.ErrInstruction, errors.E3005, "label %s is not placed", label)
}
