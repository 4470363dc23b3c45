// types.go defines the small type system shared by the IR and the backend:
// every SL value is either a plain 32-bit int or an array/pointer built from
// one. Grounded on the enum-plus-array-String() idiom of the teacher's
// src/ir/lir/types/types.go.

package ir

import "fmt"

// Kind distinguishes the shapes a Type can take.
type Kind int

const (
	KindInt Kind = iota
	KindArray
	KindPointer
	KindVoid
)

var kindNames = [...]string{"int", "array", "pointer", "void"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// WordSize is the width in bytes of every scalar SL value on RV32.
const WordSize = 4

// Type is an SL type: int, an array of fixed length, or a pointer (the
// decayed form of an array function parameter).
type Type struct {
	Kind Kind
	Elem *Type // non-nil for KindArray/KindPointer
	Len  int   // element count, meaningful for KindArray only
}

var Int = &Type{Kind: KindInt}
var Void = &Type{Kind: KindVoid}

// Array returns the type of a Len-element array of elem.
func Array(elem *Type, length int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: length}
}

// Pointer returns the type of a pointer to elem.
func Pointer(elem *Type) *Type {
	return &Type{Kind: KindPointer, Elem: elem}
}

// Size returns the total storage in bytes a value of this type occupies.
// Pointers occupy one word regardless of what they point to.
func (t *Type) Size() int {
	switch t.Kind {
	case KindInt:
		return WordSize
	case KindPointer:
		return WordSize
	case KindArray:
		return t.Len * t.Elem.Size()
	default:
		return 0
	}
}

// Dims flattens a (possibly nested) array type into its dimension list,
// outermost first, bottoming out at the scalar element type.
func (t *Type) Dims() ([]int, *Type) {
	var dims []int
	cur := t
	for cur.Kind == KindArray {
		dims = append(dims, cur.Len)
		cur = cur.Elem
	}
	return dims, cur
}

func (t *Type) String() string {
	switch t.Kind {
	case KindInt:
		return "i32"
	case KindVoid:
		return "void"
	case KindPointer:
		return fmt.Sprintf("*%s", t.Elem)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	default:
		return "?"
	}
}

// Equal reports structural type equality.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindArray:
		return t.Len == o.Len && t.Elem.Equal(o.Elem)
	case KindPointer:
		return t.Elem.Equal(o.Elem)
	default:
		return true
	}
}

// BinOp identifies a binary arithmetic or relational operator carried by a Binary value.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Neq
	Lt
	Gt
	Le
	Ge
)

var binOpNames = [...]string{"add", "sub", "mul", "div", "mod", "eq", "ne", "lt", "gt", "le", "ge"}

func (o BinOp) String() string {
	if int(o) < len(binOpNames) {
		return binOpNames[o]
	}
	return "?"
}

// IsRelational reports whether the operator produces a 0/1 boolean result.
func (o BinOp) IsRelational() bool {
	return o >= Eq
}

// UnOp identifies a unary operator carried by a Unary value.
type UnOp int

const (
	Neg UnOp = iota
	Not
)

func (o UnOp) String() string {
	if o == Neg {
		return "neg"
	}
	return "not"
}
