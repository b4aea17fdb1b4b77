package compiler

import (
	"fmt"
	"sort"

	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/op"
)

// LabelAllocator hands out label ids and places label markers into a Code.
type LabelAllocator struct {
	code   *Code
	next   int
	placed map[bytecode.Label]int
}

// NewLabelAllocator returns an allocator that places markers into code.
func NewLabelAllocator(code *Code) *LabelAllocator {
	return &LabelAllocator{code: code, placed: map[bytecode.Label]int{}}
}

// NewLabel returns the next unused label. The label is not placed.
func (a *LabelAllocator) NewLabel() bytecode.Label {
	label := bytecode.Label(a.next)
	a.next++
	return label
}

// Count returns the number of labels allocated.
func (a *LabelAllocator) Count() int {
	return a.next
}

// Place emits the marker for label at the current position.
func (a *LabelAllocator) Place(label bytecode.Label) error {
	if int(label) < 0 || int(label) >= a.next {
		return fmt.Errorf("compile error: label %s was never allocated", label)
	}
	if pos, ok := a.placed[label]; ok {
		return fmt.Errorf("compile error: label %s already placed at instruction %d", label, pos)
	}
	a.placed[label] = a.code.Emit(op.Label, int(label))
	return nil
}

// MustPlace is like Place but panics on error.
func (a *LabelAllocator) MustPlace(label bytecode.Label) {
	if err := a.Place(label); err != nil {
		panic(err)
	}
}

// Unplaced returns, in ascending order, the labels referenced by a branch
// or call that have no marker.
func (a *LabelAllocator) Unplaced() []bytecode.Label {
	missing := map[bytecode.Label]bool{}
	for _, instr := range a.code.instructions {
		if instr.IsLabel() {
			continue
		}
		info := op.GetInfo(instr.Opcode)
		for n, kind := range info.Operands {
			label := bytecode.Label(instr.Operands[n])
			if kind == op.LabelRef && !a.isPlaced(label) {
				missing[label] = true
			}
		}
	}
	labels := make([]bytecode.Label, 0, len(missing))
	for label := range missing {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

func (a *LabelAllocator) isPlaced(label bytecode.Label) bool {
	_, ok := a.placed[label]
	return ok
}
