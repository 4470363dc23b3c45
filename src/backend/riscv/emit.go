// emit.go is the instruction emitter (component H): it turns one
// already-planned ir.Function into a flat sequence of assembly text lines,
// one emitInstruction/emitTerm call per IR value. Grounded on the teacher's
// src/backend/riscv/function.go (prologue/epilogue) and expression.go
// (per-opcode codegen), generalised from tree-walking a parse tree to
// walking the new IR's basic blocks in order.
package riscv

import (
	"fmt"

	"slc/src/ir"
	"slc/src/util"
)

// EmitFunction writes one function's label, prologue, every block and the
// epilogue (repeated at each return point) to w.
func EmitFunction(f *ir.Function, fr *Frame, w *util.Writer) {
	w.Write("\t.globl\t%s\n", f.Name)
	w.Write("\t.type\t%s, @function\n", f.Name)
	w.Label(f.Name)
	emitPrologue(f, fr, w)

	m := NewMaterialiser(fr, w)
	for _, b1 := range f.Blocks {
		if len(b1.Instructions) == 0 && b1.Term == nil {
			continue // an empty, unterminated block has nothing to emit
		}
		w.Label(blockLabel(f, b1))
		m.Reset()
		for _, inst := range b1.Instructions {
			emitInstruction(inst, f, fr, m, w)
		}
		if b1.Term != nil {
			emitTerm(b1.Term, f, fr, m, w)
		}
	}
	w.Write("\t.size\t%s, .-%s\n", f.Name, f.Name)
}

func blockLabel(f *ir.Function, b *ir.Block) string {
	return fmt.Sprintf(".L%s_%s", f.Name, b.Label)
}

func emitPrologue(f *ir.Function, fr *Frame, w *util.Writer) {
	if fr.Size > 0 {
		w.Ins2Imm("addi", Sp, Sp, -fr.Size)
	}
	if !fr.Leaf {
		w.LoadStore("sw", Ra, fr.Size+fr.SaveRA, Sp)
	}
	w.LoadStore("sw", Fp, fr.Size+fr.SaveFP, Sp)
	w.Ins2Imm("addi", Fp, Sp, fr.Size)

	// Spill register-passed parameters to their High-region slot immediately,
	// so the rest of the body can treat every parameter uniformly as a
	// memory-resident value reloaded on demand.
	for i1, p1 := range f.Params {
		if i1 >= argRegs {
			continue
		}
		if off, ok := fr.Slots[p1]; ok {
			w.LoadStore("sw", Arg[i1], off, Fp)
		}
	}
}

func emitEpilogue(fr *Frame, w *util.Writer) {
	if !fr.Leaf {
		w.LoadStore("lw", Ra, fr.Size+fr.SaveRA, Sp)
	}
	w.LoadStore("lw", Fp, fr.Size+fr.SaveFP, Sp)
	if fr.Size > 0 {
		w.Ins2Imm("addi", Sp, Sp, fr.Size)
	}
	w.Write("\tret\n")
}

func emitTerm(term ir.Value, f *ir.Function, fr *Frame, m *Materialiser, w *util.Writer) {
	switch t := term.(type) {
	case *ir.Ret:
		if t.Val != nil {
			r := m.Materialize(t.Val)
			if r != Arg[0] {
				w.Ins2("mv", Arg[0], r)
			}
		}
		emitEpilogue(fr, w)
	case *ir.Jump:
		w.Write("\tj\t%s\n", blockLabel(f, t.Target))
	case *ir.Branch:
		cr := m.Materialize(t.Cond)
		w.Write("\tbnez\t%s, %s\n", cr, blockLabel(f, t.Then))
		w.Write("\tj\t%s\n", blockLabel(f, t.Else))
	default:
		panic(fmt.Sprintf("emit: unknown terminator %T", term))
	}
}

func emitInstruction(inst ir.Value, f *ir.Function, fr *Frame, m *Materialiser, w *util.Writer) {
	switch v := inst.(type) {
	case *ir.Alloc:
		// storage already reserved by the frame planner; nothing to emit.

	case *ir.Load:
		r := m.Materialize(v.Ptr)
		w.LoadStore("lw", r, 0, r)
		m.Spill(r, v)

	case *ir.Store:
		pr := m.Materialize(v.Ptr)
		vr := m.MaterializeExcept(v.Val, []string{pr})
		w.LoadStore("sw", vr, 0, pr)

	case *ir.GetElemPtr:
		base := m.Materialize(v.Ptr)
		idx := m.MaterializeExcept(v.Index, []string{base})
		size := v.Elem.Size()
		if size != 1 {
			szr := m.MaterializeExcept(ir.NewConstInt(int32(size)), []string{base, idx})
			w.Ins3("mul", idx, idx, szr)
		}
		w.Ins3("add", base, base, idx)
		m.Spill(base, v)

	case *ir.Binary:
		emitBinary(v, m, w)

	case *ir.Unary:
		x := m.Materialize(v.X)
		switch v.Op {
		case ir.Neg:
			w.Write("\tneg\t%s, %s\n", x, x)
		case ir.Not:
			w.Write("\tseqz\t%s, %s\n", x, x)
		}
		m.Spill(x, v)

	case *ir.Call:
		emitCall(v, fr, m, w)

	default:
		panic(fmt.Sprintf("emit: unknown instruction %T", inst))
	}
}

func emitBinary(v *ir.Binary, m *Materialiser, w *util.Writer) {
	l := m.Materialize(v.L)
	r := m.MaterializeExcept(v.R, []string{l})
	dst := l
	switch v.Op {
	case ir.Add:
		w.Ins3("add", dst, l, r)
	case ir.Sub:
		w.Ins3("sub", dst, l, r)
	case ir.Mul:
		w.Ins3("mul", dst, l, r)
	case ir.Div:
		w.Ins3("div", dst, l, r)
	case ir.Mod:
		w.Ins3("rem", dst, l, r)
	case ir.Eq:
		w.Ins3("sub", dst, l, r)
		w.Write("\tseqz\t%s, %s\n", dst, dst)
	case ir.Neq:
		w.Ins3("sub", dst, l, r)
		w.Write("\tsnez\t%s, %s\n", dst, dst)
	case ir.Lt:
		w.Ins3("slt", dst, l, r)
	case ir.Gt:
		w.Ins3("slt", dst, r, l)
	case ir.Le:
		w.Ins3("slt", dst, r, l)
		w.Write("\txori\t%s, %s, 1\n", dst, dst)
	case ir.Ge:
		w.Ins3("slt", dst, l, r)
		w.Write("\txori\t%s, %s, 1\n", dst, dst)
	}
	m.Spill(dst, v)
}

func emitCall(v *ir.Call, fr *Frame, m *Materialiser, w *util.Writer) {
	for i1, a1 := range v.Args {
		if i1 < argRegs {
			m.MaterializeInto(Arg[i1], a1)
			continue
		}
		r := m.Materialize(a1)
		off := (i1 - argRegs) * WordSize
		w.LoadStore("sw", r, off, Sp)
	}
	w.Write("\tcall\t%s\n", v.Callee.Name)
	if v.Callee.Ret != ir.Void {
		m.Spill(Arg[0], v)
	}
}
