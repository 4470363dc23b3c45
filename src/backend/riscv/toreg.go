// toreg.go is the value materialiser (component G): it brings an ir.Value
// into a temporary register immediately before the instruction that needs it
// and spills results back out immediately after, rather than keeping any SSA
// value resident in a register across instructions. Registers are handed out
// round-robin from backend/regfile, and constants outside the 12-bit
// immediate range are expanded into a lui/addi pair. Grounded on the
// teacher's src/backend/riscv/riscv.go loadIdentifierToReg/saveRegToIdentifier
// pair, generalised from its symbol-table lookup to slot-addressed SSA values.
package riscv

import (
	"slc/src/backend/regfile"
	"slc/src/ir"
	"slc/src/util"
)

// Materialiser binds one function's Frame and register file to an output
// writer. One is created per function generated.
type Materialiser struct {
	fr   *Frame
	regs *regfile.File
	w    *util.Writer
}

func NewMaterialiser(fr *Frame, w *util.Writer) *Materialiser {
	return &Materialiser{fr: fr, regs: regfile.New(), w: w}
}

// Reset rewinds the round-robin cursor; called at the start of every basic block.
func (m *Materialiser) Reset() { m.regs.Reset() }

func (m *Materialiser) slotOffset(v ir.Value) (int, bool) {
	if off, ok := m.fr.Slots[v]; ok {
		return off, true
	}
	if p, ok := v.(*ir.Param); ok {
		if off, ok := m.fr.ArgSlots[p]; ok {
			return off, true
		}
	}
	return 0, false
}

// Materialize brings v into a freshly allocated temp register and returns its name.
func (m *Materialiser) Materialize(v ir.Value) string {
	r := m.regs.GetNextTemp()
	m.MaterializeInto(r.Name, v)
	return r.Name
}

// MaterializeExcept is like Materialize but never hands out a register whose
// name appears in exclude, so it can be used for a second operand that must
// not alias the first.
func (m *Materialiser) MaterializeExcept(v ir.Value, exclude []string) string {
	var excRegs []regfile.Register
	for _, n1 := range exclude {
		for _, t1 := range regfile.Temps {
			if t1.Name == n1 {
				excRegs = append(excRegs, t1)
			}
		}
	}
	r := m.regs.GetNextTempExclude(excRegs)
	m.MaterializeInto(r.Name, v)
	return r.Name
}

// MaterializeInto loads v into the named register without allocating one.
func (m *Materialiser) MaterializeInto(reg string, v ir.Value) {
	switch val := v.(type) {
	case *ir.ConstInt:
		m.loadImm(reg, val.Val)
	case *ir.Global:
		m.w.Write("\tla\t%s, %s\n", reg, val.Name)
	case *ir.Alloc:
		// An Alloc's value is the address of its storage, not its contents.
		off, ok := m.slotOffset(v)
		if !ok {
			panic("toreg: value has no stack slot: " + v.String())
		}
		m.w.Ins2Imm("addi", reg, Fp, off)
	default:
		off, ok := m.slotOffset(v)
		if !ok {
			panic("toreg: value has no stack slot: " + v.String())
		}
		m.w.LoadStore("lw", reg, off, Fp)
	}
}

// Spill stores the contents of reg into v's stack slot.
func (m *Materialiser) Spill(reg string, v ir.Value) {
	off, ok := m.slotOffset(v)
	if !ok {
		panic("toreg: value has no stack slot: " + v.String())
	}
	m.w.LoadStore("sw", reg, off, Fp)
}

// loadImm emits li rd, val, expanding to lui+addi when val does not fit the
// 12-bit immediate of a single addi.
func (m *Materialiser) loadImm(reg string, val int32) {
	if fits12(int(val)) {
		m.w.Write("\tli\t%s, %d\n", reg, val)
		return
	}
	hi, lo := splitImm(val)
	m.w.Write("\tlui\t%s, %d\n", reg, hi)
	if lo != 0 {
		m.w.Ins2Imm("addi", reg, reg, int(lo))
	}
}

// splitImm splits a 32-bit constant into the (hi, lo) pair consumed by a
// lui/addi pseudo-expansion: lo is addi's signed 12-bit immediate, hi is the
// remaining upper bits after compensating for lo's sign.
func splitImm(v int32) (hi, lo int32) {
	lo = v & 0xFFF
	if lo >= 0x800 {
		lo -= 0x1000
	}
	hi = (v - lo) >> 12
	return
}
