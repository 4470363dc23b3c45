// shape.go implements the initializer shaper (component B): it turns the
// brace-skipping aggregate literal the parser handed back into a fully
// dimensioned, zero-padded tree whose leaves line up one-to-one with the
// flattened storage order of the declared type. Every subsequent stage
// (global data emission, local store lowering) walks a RawAggregate instead
// of re-deriving shape from the original braces.

package ir

import "slc/src/frontend"

// RawAggregate is either a scalar leaf expression or a fully-populated row
// of Dims[0] child aggregates, recursively shaped the same way.
type RawAggregate struct {
	Dims  []int // nil for a scalar leaf
	Elems []*RawAggregate
	Leaf  frontend.Exp
}

// Leaves returns ra's scalar leaves in row-major storage order.
func (ra *RawAggregate) Leaves() []frontend.Exp {
	if ra.Dims == nil {
		return []frontend.Exp{ra.Leaf}
	}
	var out []frontend.Exp
	for _, e1 := range ra.Elems {
		out = append(out, e1.Leaves()...)
	}
	return out
}

// ConstWords folds every leaf of ra to a compile-time int32 using env,
// returning them in row-major storage order. Global array data, const or
// not, must be fully foldable since it is laid out statically in .data; the
// caller surfaces a failed fold as a ConstEvalFailure.
func (ra *RawAggregate) ConstWords(env constEnv, eval func(frontend.Exp, constEnv) (int32, bool)) ([]int32, bool) {
	leaves := ra.Leaves()
	words := make([]int32, len(leaves))
	for i1, leaf := range leaves {
		v, ok := eval(leaf, env)
		if !ok {
			return nil, false
		}
		words[i1] = v
	}
	return words, true
}

func prod(dims []int) int {
	n := 1
	for _, d1 := range dims {
		n *= d1
	}
	return n
}

var zeroLit = &frontend.LiteralExp{Val: 0}

// zeroAggregate builds a fully zero-filled tree of the given dims.
func zeroAggregate(dims []int) *RawAggregate {
	if len(dims) == 0 {
		return &RawAggregate{Leaf: zeroLit}
	}
	elems := make([]*RawAggregate, dims[0])
	for i1 := range elems {
		elems[i1] = zeroAggregate(dims[1:])
	}
	return &RawAggregate{Dims: dims, Elems: elems}
}

// Shape builds the padded initializer tree for a declaration of type ty
// (scalar or array) from its raw, possibly brace-skipping Init.
func Shape(ty *Type, init frontend.Init, line int) (*RawAggregate, error) {
	if ty.Kind != KindArray {
		if init == nil {
			return &RawAggregate{Leaf: zeroLit}, nil
		}
		v, ok := init.(*frontend.InitValue)
		if !ok {
			return nil, newErr(ArrayTypeFailure, line, "scalar declaration cannot take a brace initializer")
		}
		return &RawAggregate{Leaf: v.Exp}, nil
	}
	dims, _ := ty.Dims()
	if init == nil {
		return zeroAggregate(dims), nil
	}
	list, ok := init.(*frontend.InitList)
	if !ok {
		return nil, newErr(ArrayTypeFailure, line, "array declaration requires a brace initializer")
	}
	return shapeRow(dims, list.Items, line)
}

// shapeRow consumes items against dims[0] positions, each of which is either
// an explicit nested brace (recursed wholesale) or a run of bare scalars
// that brace-skipping folds into as many rows of dims[1:] as it can fill.
// Rows left unfilled after items is exhausted are zero-padded; items left
// over once dims[0] rows are filled are an excess-initializer error.
func shapeRow(dims []int, items []frontend.Init, line int) (*RawAggregate, error) {
	rowSize := prod(dims[1:])
	var elems []*RawAggregate
	idx := 0
	for idx < len(items) && len(elems) < dims[0] {
		if nested, ok := items[idx].(*frontend.InitList); ok {
			if len(dims) == 1 {
				// A brace nested one level too deep for a scalar slot: shape it
				// as if it were this element's own (length-1) dimension and
				// take its first leaf; malformed input is not expected here
				// since the parser only emits this shape for genuine arrays.
				row, err := shapeRow([]int{1}, nested.Items, line)
				if err != nil {
					return nil, err
				}
				elems = append(elems, row.Elems[0])
			} else {
				row, err := shapeRow(dims[1:], nested.Items, line)
				if err != nil {
					return nil, err
				}
				elems = append(elems, row)
			}
			idx++
			continue
		}
		// Bare scalar run: grab up to rowSize consecutive InitValue leaves
		// (stopping early at the next explicit brace) and reshape them.
		var flat []frontend.Exp
		for idx < len(items) && len(flat) < rowSize {
			iv, ok := items[idx].(*frontend.InitValue)
			if !ok {
				break
			}
			flat = append(flat, iv.Exp)
			idx++
		}
		elems = append(elems, reshapeFlat(dims[1:], flat))
	}
	if idx < len(items) {
		return nil, newErr(ArrayTypeFailure, line, "excess elements in array initializer")
	}
	for len(elems) < dims[0] {
		elems = append(elems, zeroAggregate(dims[1:]))
	}
	return &RawAggregate{Dims: dims, Elems: elems}, nil
}

// reshapeFlat packs a flat run of scalar expressions (no explicit nested
// braces) into the shape described by dims, zero-padding any trailing gap.
func reshapeFlat(dims []int, flat []frontend.Exp) *RawAggregate {
	if len(dims) == 0 {
		if len(flat) == 0 {
			return &RawAggregate{Leaf: zeroLit}
		}
		return &RawAggregate{Leaf: flat[0]}
	}
	rowSize := prod(dims[1:])
	elems := make([]*RawAggregate, dims[0])
	for i1 := range elems {
		lo := i1 * rowSize
		hi := lo + rowSize
		if lo >= len(flat) {
			elems[i1] = zeroAggregate(dims[1:])
			continue
		}
		if hi > len(flat) {
			hi = len(flat)
		}
		elems[i1] = reshapeFlat(dims[1:], flat[lo:hi])
	}
	return &RawAggregate{Dims: dims, Elems: elems}
}
