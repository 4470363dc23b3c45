package riscv

import (
	"testing"

	"slc/src/frontend"
	"slc/src/ir"
)

func buildFunc(t *testing.T, src string) *ir.Function {
	t.Helper()
	items, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	prog, err := ir.Build(items)
	if err != nil {
		t.Fatalf("Build: %s", err)
	}
	return prog.Funcs[0]
}

func TestFrameSizeIsStackAligned(t *testing.T) {
	f := buildFunc(t, `int f() { int a; int b[5]; a = 1; return a; }`)
	fr := Plan(f)
	if fr.Size%StackAlign != 0 {
		t.Fatalf("frame size %d is not 16-byte aligned", fr.Size)
	}
}

func TestLeafFunctionDetected(t *testing.T) {
	f := buildFunc(t, `int f(int a) { return a + 1; }`)
	fr := Plan(f)
	if !fr.Leaf {
		t.Fatal("expected a function with no calls to be classified as a leaf")
	}
	if fr.SaveRA != 0 {
		t.Fatalf("expected no ra save slot for a leaf, got offset %d", fr.SaveRA)
	}
}

func TestNonLeafFunctionSavesRA(t *testing.T) {
	prog := programOf(t, `int g(int a) { return a; }
int f() { return g(1); }`)
	var fn *ir.Function
	for _, fn1 := range prog.Funcs {
		if fn1.Name == "f" {
			fn = fn1
		}
	}
	if fn == nil {
		t.Fatal("function f not found in program")
	}
	fr := Plan(fn)
	if fr.Leaf {
		t.Fatal("expected a function that calls another to not be a leaf")
	}
	if fr.SaveRA == 0 {
		t.Fatal("expected a non-leaf function to reserve a ra save slot")
	}
}

func programOf(t *testing.T, src string) *ir.Program {
	t.Helper()
	items, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	prog, err := ir.Build(items)
	if err != nil {
		t.Fatalf("Build: %s", err)
	}
	return prog
}

func TestAllocSlotsAreDistinctAndNegative(t *testing.T) {
	f := buildFunc(t, `int f() { int a; int b; int c; a = 1; b = 2; c = 3; return a + b + c; }`)
	fr := Plan(f)
	seen := make(map[int]bool)
	for v, off := range fr.Slots {
		if off >= 0 {
			t.Errorf("slot for %v has non-negative offset %d", v, off)
		}
		if seen[off] {
			t.Errorf("duplicate slot offset %d", off)
		}
		seen[off] = true
	}
}

func TestOverflowParamsGetPrevSlots(t *testing.T) {
	f := buildFunc(t, `int f(int a, int b, int c, int d, int e, int g, int h, int i, int j, int k) { return j + k; }`)
	fr := Plan(f)
	if len(fr.ArgSlots) != 2 {
		t.Fatalf("expected 2 overflow parameters, got %d", len(fr.ArgSlots))
	}
	for _, off := range fr.ArgSlots {
		if off < 0 {
			t.Errorf("expected a non-negative Prev-region offset, got %d", off)
		}
	}
}
