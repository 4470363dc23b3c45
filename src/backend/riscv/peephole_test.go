package riscv

import (
	"strings"
	"testing"
)

func TestPeepholeDropsRedundantReload(t *testing.T) {
	in := "\taddi\tt0, t0, 1\n\tsw\tt0, -4(fp)\n\tlw\tt0, -4(fp)\n\tmv\ta0, t0\n"
	out := Peephole(in)
	if strings.Count(out, "lw\tt0, -4(fp)") != 0 {
		t.Errorf("expected the redundant reload to be dropped, got:\n%s", out)
	}
	if strings.Count(out, "sw\tt0, -4(fp)") != 1 {
		t.Errorf("expected the store to survive, got:\n%s", out)
	}
}

func TestPeepholeKeepsReloadIntoDifferentRegister(t *testing.T) {
	in := "\tsw\tt0, -4(fp)\n\tlw\tt1, -4(fp)\n"
	out := Peephole(in)
	if strings.Count(out, "lw\tt1, -4(fp)") != 1 {
		t.Errorf("expected a reload into a different register to survive, got:\n%s", out)
	}
}

func TestPeepholeKeepsReloadFromDifferentOffset(t *testing.T) {
	in := "\tsw\tt0, -4(fp)\n\tlw\tt0, -8(fp)\n"
	out := Peephole(in)
	if strings.Count(out, "lw\tt0, -8(fp)") != 1 {
		t.Errorf("expected a reload from a different slot to survive, got:\n%s", out)
	}
}

func TestPeepholeIsNotAFixpoint(t *testing.T) {
	// Two redundant pairs back to back: the single linear pass drops the
	// reload of each adjacent pair without rescanning its own output.
	in := "\tsw\tt0, -4(fp)\n\tlw\tt0, -4(fp)\n\tsw\tt0, -4(fp)\n\tlw\tt0, -4(fp)\n"
	out := Peephole(in)
	if strings.Count(out, "lw\tt0, -4(fp)") != 0 {
		t.Errorf("expected both redundant reloads to be dropped in one pass, got:\n%s", out)
	}
}

func TestParseMemInstrRejectsNonMemLine(t *testing.T) {
	_, _, _, _, ok := parseMemInstr("\tadd\tt0, t1, t2", "sw")
	if ok {
		t.Fatal("expected a non memory instruction line not to parse as one")
	}
}

func TestParseMemInstrParsesStore(t *testing.T) {
	op, reg, off, base, ok := parseMemInstr("\tsw\tt0, -12(fp)", "sw")
	if !ok {
		t.Fatal("expected a well-formed store line to parse")
	}
	if op != "sw" || reg != "t0" || off != "-12" || base != "fp" {
		t.Errorf("parseMemInstr returned (%q, %q, %q, %q)", op, reg, off, base)
	}
}
