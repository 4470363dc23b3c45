// print.go renders a Program as a flat, Koopa-style textual IR dump (the
// -koopa driver mode): one line per instruction, using each Value's own
// String() method, the same per-instruction text idiom as the teacher's
// src/ir/lir/print.go.

package ir

import (
	"fmt"
	"strings"

	"slc/src/frontend"
)

// String renders the whole program: globals first, then each function's blocks in order.
func (p *Program) String() string {
	var sb strings.Builder
	for _, g1 := range p.Globals {
		sb.WriteString(g1.declString())
		sb.WriteRune('\n')
	}
	if len(p.Globals) > 0 {
		sb.WriteRune('\n')
	}
	for i1, f1 := range p.Funcs {
		sb.WriteString(f1.String())
		if i1 < len(p.Funcs)-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func (g *Global) declString() string {
	kw := "global"
	if g.Const {
		kw = "const"
	}
	if g.Init == nil {
		return kw + " @" + g.Name + ": " + g.Ty.String() + " = zeroinit"
	}
	return kw + " @" + g.Name + ": " + g.Ty.String() + " = " + g.Init.String()
}

// String renders a RawAggregate the way an initializer literal reads in source.
func (ra *RawAggregate) String() string {
	if ra.Dims == nil {
		return expString(ra.Leaf)
	}
	var sb strings.Builder
	sb.WriteRune('{')
	for i1, e1 := range ra.Elems {
		sb.WriteString(e1.String())
		if i1 < len(ra.Elems)-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteRune('}')
	return sb.String()
}

// expString renders a source expression for diagnostic/dump purposes.
// Global initializers are always constant expressions by the time they
// reach here, so this need not be a full pretty-printer.
func expString(e frontend.Exp) string {
	switch n := e.(type) {
	case *frontend.LiteralExp:
		return fmt.Sprintf("%d", n.Val)
	case *frontend.UnaryExp:
		op := "-"
		if n.Op == frontend.OpNot {
			op = "!"
		}
		return op + expString(n.E)
	case *frontend.BinaryExp:
		return fmt.Sprintf("(%s %s %s)", expString(n.L), binOpSymbol(n.Op), expString(n.R))
	case *frontend.LValExp:
		return n.LVal.Ident
	default:
		return "?"
	}
}

func binOpSymbol(op frontend.BinOp) string {
	switch op {
	case frontend.BinAdd:
		return "+"
	case frontend.BinSub:
		return "-"
	case frontend.BinMul:
		return "*"
	case frontend.BinDiv:
		return "/"
	case frontend.BinMod:
		return "%"
	default:
		return "?"
	}
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString("fun @")
	sb.WriteString(f.Name)
	sb.WriteRune('(')
	for i1, p1 := range f.Params {
		sb.WriteString(p1.Name)
		sb.WriteString(": ")
		sb.WriteString(p1.Ty.String())
		if i1 < len(f.Params)-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteString("): ")
	sb.WriteString(f.Ret.String())
	sb.WriteString(" {\n")
	for _, b1 := range f.Blocks {
		if len(b1.Instructions) == 0 && b1.Term == nil {
			continue // an empty, unterminated block; nothing to print
		}
		sb.WriteString("%")
		sb.WriteString(b1.Label)
		sb.WriteString(":\n")
		for _, inst := range b1.Instructions {
			sb.WriteString("  ")
			sb.WriteString(inst.String())
			sb.WriteRune('\n')
		}
		if b1.Term != nil {
			sb.WriteString("  ")
			sb.WriteString(b1.Term.String())
			sb.WriteRune('\n')
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
