package riscv

import (
	"strings"
	"testing"

	"slc/src/ir"
	"slc/src/util"
)

func TestSplitImmRecombines(t *testing.T) {
	cases := []int32{0, 1, -1, 2047, 2048, -2048, -2049, 1 << 20, -(1 << 20), 0x7FFFFFFF, -0x7FFFFFFF}
	for _, v1 := range cases {
		hi, lo := splitImm(v1)
		got := hi<<12 + lo
		if got != v1 {
			t.Errorf("splitImm(%d) = (%d, %d), recombines to %d", v1, hi, lo, got)
		}
		if lo > MaxImm || lo < MinImm {
			t.Errorf("splitImm(%d) produced out-of-range lo %d", v1, lo)
		}
	}
}

func TestLoadImmSmallUsesLi(t *testing.T) {
	w := util.NewWriter(nil)
	m := &Materialiser{fr: &Frame{}, w: w}
	m.loadImm("t0", 100)
	out := w.String()
	if !strings.Contains(out, "li\tt0, 100") {
		t.Errorf("expected a li pseudo-instruction, got:\n%s", out)
	}
	if strings.Contains(out, "lui") {
		t.Errorf("did not expect lui for an in-range immediate, got:\n%s", out)
	}
}

func TestLoadImmLargeExpandsToLuiAddi(t *testing.T) {
	w := util.NewWriter(nil)
	m := &Materialiser{fr: &Frame{}, w: w}
	m.loadImm("t0", 1<<20)
	out := w.String()
	if !strings.Contains(out, "lui") {
		t.Errorf("expected a lui expansion for an out-of-range immediate, got:\n%s", out)
	}
}

func TestMaterializeConstDoesNotTouchSlots(t *testing.T) {
	w := util.NewWriter(nil)
	fr := &Frame{Slots: map[ir.Value]int{}}
	m := NewMaterialiser(fr, w)
	reg := m.Materialize(&ir.ConstInt{Val: 7})
	out := w.String()
	if !strings.Contains(out, "li\t"+reg+", 7") {
		t.Errorf("expected constant to materialise via li, got:\n%s", out)
	}
}

func TestMaterializePanicsOnUnknownValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic materialising a value with no stack slot")
		}
	}()
	w := util.NewWriter(nil)
	fr := &Frame{Slots: map[ir.Value]int{}}
	m := NewMaterialiser(fr, w)
	m.Materialize(&ir.Alloc{Ty: ir.Int})
}
