// print.go is the assembly serializer and global data emitter (component
// J): it renders an entire ir.Program to RV32I+M assembly text,
// one function at a time through emit.go and Peephole, preceded by the
// .data/.rodata section for every global. Grounded on the teacher's
// src/backend/riscv/riscv.go GenRiscv orchestration, stripped of its worker
// pool (§5 mandates strictly sequential generation) and retargeted at the
// new SSA Program instead of the old parse tree.
package riscv

import (
	"fmt"
	"strings"

	"slc/src/ir"
	"slc/src/util"
)

// Generate lowers prog to a complete assembly file and flushes it to w.
func Generate(prog *ir.Program, w *util.Writer) error {
	w.Write("\t.option\tnopic\n")
	emitData(prog, w)
	w.Write("\t.text\n")
	for _, f1 := range prog.Funcs {
		fr := Plan(f1)
		scratch := util.NewWriter(nil)
		EmitFunction(f1, fr, scratch)
		w.WriteString(Peephole(scratch.String()))
	}
	return w.Flush()
}

// emitData writes every global's storage: .rodata for const globals (never
// written to at runtime), .data for the rest, zero-initialized globals
// collapsed to a single .zero directive and runs of zero words within a
// partially-initialized array coalesced the same way.
func emitData(prog *ir.Program, w *util.Writer) {
	for _, g1 := range prog.Globals {
		if g1.Const {
			w.Write("\t.section\t.rodata\n")
		} else {
			w.Write("\t.data\n")
		}
		w.Write("\t.globl\t%s\n", g1.Name)
		w.Write("\t.align\t2\n")
		w.Write("\t.type\t%s, @object\n", g1.Name)
		w.Write("\t.size\t%s, %d\n", g1.Name, g1.Ty.Size())
		w.Label(g1.Name)
		emitGlobalWords(g1, w)
	}
}

func emitGlobalWords(g *ir.Global, w *util.Writer) {
	if g.Words == nil {
		w.Write("\t.zero\t%d\n", g.Ty.Size())
		return
	}
	words := g.Words
	for i1 := 0; i1 < len(words); {
		if words[i1] == 0 {
			j := i1
			for j < len(words) && words[j] == 0 {
				j++
			}
			w.Write("\t.zero\t%d\n", (j-i1)*WordSize)
			i1 = j
			continue
		}
		j := i1
		for j < len(words) && words[j] != 0 {
			j++
		}
		parts := make([]string, j-i1)
		for k1 := i1; k1 < j; k1++ {
			parts[k1-i1] = fmt.Sprintf("%d", words[k1])
		}
		w.Write("\t.word\t%s\n", strings.Join(parts, ", "))
		i1 = j
	}
}
