// frame.go is the stack frame planner (component F): it walks a lowered
// ir.Function once and assigns every Alloc a fixed fp-relative offset before
// a single instruction of assembly is emitted. Grounded on the teacher's
// src/backend/riscv/function.go prologue/epilogue construction, generalised
// from its symbol-table-driven offsets to the SSA Alloc values of the new IR.
//
// A frame has three regions, highest address first:
//
//	Prev  -- the caller's overflow arguments (the 9th SL parameter onward),
//	         living above our frame, addressed with a positive fp offset.
//	High  -- our own saved ra and saved fp (only ra is omitted for leaves),
//	         plus every local Alloc/value/parameter slot, all fp-relative.
//	Low   -- the outgoing overflow-argument area this function reserves for
//	         its own calls (the mirror of Prev in whatever function we call),
//	         addressed relative to sp since it sits at the very bottom.
package riscv

import "slc/src/ir"

// Frame describes the stack layout computed for one function.
type Frame struct {
	Size     int               // total frame size in bytes, 16-byte aligned
	Leaf     bool              // true if the function makes no calls
	SaveRA   int                // fp-relative offset where ra is spilled; meaningless if Leaf
	SaveFP   int                // fp-relative offset where the caller's fp is spilled
	Out      int                // bytes reserved at the bottom of the frame for outgoing overflow call arguments
	Slots    map[ir.Value]int   // Alloc/value/parameter -> fp-relative offset (negative, High region)
	ArgSlots map[*ir.Param]int  // overflow Param (index >= 8) -> fp-relative offset (positive, Prev region)
}

// argRegs is the number of integer argument registers, a0..a7.
const argRegs = 8

// Plan computes the Frame for f. It must run before any instruction is
// emitted for f, since every memory reference to a local or an overflow
// parameter needs its final offset.
func Plan(f *ir.Function) *Frame {
	fr := &Frame{
		Slots:    make(map[ir.Value]int),
		ArgSlots: make(map[*ir.Param]int),
	}

	fr.Leaf = !hasCall(f)
	f.Leaf = fr.Leaf

	// High region: every Alloc gets a slot sized to its declared type, every
	// other value-producing instruction gets a one-word slot so its result
	// survives across the instruction that consumes it, and every
	// register-passed parameter gets a one-word slot too, since the
	// prologue spills a0..a7 to memory immediately so later blocks can
	// reload them like any other value -- this compiler keeps no SSA value
	// live in a register between instructions, it reloads from its slot
	// each time (component G materialises it).
	low := 0
	for _, b1 := range f.Blocks {
		for _, inst := range b1.Instructions {
			switch v := inst.(type) {
			case *ir.Alloc:
				size := alignUp(v.Ty.Size(), WordSize)
				low += size
				fr.Slots[v] = -low
			case *ir.Store:
				// produces no value, nothing to stack.
			default:
				low += WordSize
				fr.Slots[v] = -low
			}
		}
	}
	for i1, p1 := range f.Params {
		if i1 >= argRegs {
			continue
		}
		low += WordSize
		fr.Slots[p1] = -low
	}

	// Saved fp always, saved ra only for non-leaves; these ride at the
	// bottom of the High region, one past the last value slot.
	high := low + WordSize
	fr.SaveFP = -high
	if !fr.Leaf {
		high += WordSize
		fr.SaveRA = -high
	}

	// Low region: reserve enough room for the largest overflow-argument
	// push any call site in this function makes.
	fr.Out = maxOutgoing(f) * WordSize

	fr.Size = alignUp(high+fr.Out, StackAlign)

	// Prev region: the 9th SL parameter and onward were pushed by the
	// caller directly above its call-site sp, which becomes our incoming
	// fp once the prologue runs; slot i (0-indexed overall) sits at
	// fp + (i-argRegs)*WordSize.
	for i1, p1 := range f.Params {
		if i1 < argRegs {
			continue
		}
		fr.ArgSlots[p1] = (i1 - argRegs) * WordSize
	}

	return fr
}

func hasCall(f *ir.Function) bool {
	for _, b1 := range f.Blocks {
		for _, inst := range b1.Instructions {
			if _, ok := inst.(*ir.Call); ok {
				return true
			}
		}
	}
	return false
}

// maxOutgoing returns the largest number of overflow (9th and onward)
// arguments passed by any call in f, or 0 if f makes no such calls.
func maxOutgoing(f *ir.Function) int {
	max := 0
	for _, b1 := range f.Blocks {
		for _, inst := range b1.Instructions {
			c1, ok := inst.(*ir.Call)
			if !ok {
				continue
			}
			if n := len(c1.Args) - argRegs; n > max {
				max = n
			}
		}
	}
	return max
}
