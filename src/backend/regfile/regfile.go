// Package regfile provides the round-robin temporary integer register file
// used by the value materialiser (component G). Floating point is out of
// scope (§ Non-goals), so unlike the teacher's split Register/RegisterFile
// interfaces this file only ever deals with the RV32 integer bank.

package regfile

import "fmt"

// Register identifies one physical RV32 integer register.
type Register struct {
	Name string // assembler mnemonic, e.g. "t3"
	Idx  int    // index within its class (0..6 for the temporaries)
}

func (r Register) String() string { return r.Name }

// Temps lists the temporary registers available to the materialiser, in the
// round-robin order they are handed out: t0..t6.
var Temps = []Register{
	{Name: "t0", Idx: 0},
	{Name: "t1", Idx: 1},
	{Name: "t2", Idx: 2},
	{Name: "t3", Idx: 3},
	{Name: "t4", Idx: 4},
	{Name: "t5", Idx: 5},
	{Name: "t6", Idx: 6},
}

// File is a round-robin allocator over Temps: GetNextTemp always returns the
// register one past the last one handed out, wrapping around. There is no
// notion of freeing a specific register early; the materialiser relies on
// round-robin reuse clobbering the oldest live value by construction
// (values that must survive a clobber are spilled to their stack slot first).
type File struct {
	next int
}

func New() *File { return &File{} }

// Ki is the number of usable temporary integer registers.
func (f *File) Ki() int { return len(Temps) }

// GetNextTemp returns the next register in round-robin order.
func (f *File) GetNextTemp() Register {
	r := Temps[f.next%len(Temps)]
	f.next++
	return r
}

// GetNextTempExclude is like GetNextTemp but skips any register in exc,
// used when an instruction's other operand already occupies a temp that
// must not be clobbered by this allocation.
func (f *File) GetNextTempExclude(exc []Register) Register {
	for i1 := 0; i1 < len(Temps); i1++ {
		r := Temps[f.next%len(Temps)]
		f.next++
		excluded := false
		for _, e1 := range exc {
			if e1.Name == r.Name {
				excluded = true
				break
			}
		}
		if !excluded {
			return r
		}
	}
	panic(fmt.Sprintf("GetNextTempExclude: all %d temporaries excluded", len(Temps)))
}

// Reset rewinds the round-robin cursor; called (through Materialiser.Reset)
// at the start of every basic block, so each block starts from a clean slate.
func (f *File) Reset() { f.next = 0 }
