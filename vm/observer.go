package vm

import (
	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with safe defaults.
// ObserveCalls and ObserveReturns default to true.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing VM execution events, for tracing,
// profiling or coverage. Implementations can embed NoOpObserver to provide
// default implementations for methods they don't need.
//
// Observer methods are called synchronously during execution.
type Observer interface {
	// Config returns the observer's configuration. Called once when a run
	// starts.
	Config() ObserverConfig

	// OnStep is called based on the StepMode in the observer's config.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool

	// OnCall is called when CHPR transfers control to a procedure or
	// function. Returns false to halt execution immediately.
	OnCall(event CallEvent) bool

	// OnReturn is called when RTPR returns to the caller.
	// Returns false to halt execution immediately.
	OnReturn(event ReturnEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the position of the instruction about to execute.
	IP int

	Opcode     op.Code
	OpcodeName string

	// Location is the source location of the instruction.
	Location bytecode.SourceLocation

	// StackDepth is the number of memory cells in use.
	StackDepth int

	// FrameDepth is the number of active calls.
	FrameDepth int
}

// CallEvent contains information about a procedure or function call.
type CallEvent struct {
	// Label is the entry point of the callee.
	Label bytecode.Label

	// Location is the source location of the call site.
	Location bytecode.SourceLocation

	// FrameDepth is the number of active calls after the call.
	FrameDepth int
}

// ReturnEvent contains information about a return.
type ReturnEvent struct {
	// Label is the entry point of the returning callee.
	Label bytecode.Label

	// Location is the source location of the return.
	Location bytecode.SourceLocation

	// FrameDepth is the number of active calls after returning.
	FrameDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
// It uses StepAll mode with ObserveCalls and ObserveReturns enabled.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}
