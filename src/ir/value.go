// value.go defines the SSA value model: every instruction is a Value with a
// numeric id, a type, and operands. Grounded on the builder-method idiom of
// the teacher's src/ir/lir/value.go and block.go (CreateAdd/CreateLoad/...
// factory methods that validate operand types and number each instruction),
// generalised here from the teacher's own non-SSA tree-walking IR to a real
// CFG of basic blocks holding typed SSA values.

package ir

import "fmt"

// Value is anything that can be used as an operand: an instruction, a
// constant, a function parameter or a global.
type Value interface {
	ID() int
	Type() *Type
	String() string
}

var valueCounter int

func nextID() int {
	valueCounter++
	return valueCounter
}

// ConstInt is a literal 32-bit integer constant.
type ConstInt struct {
	id  int
	Val int32
}

func NewConstInt(v int32) *ConstInt  { return &ConstInt{id: nextID(), Val: v} }
func (c *ConstInt) ID() int          { return c.id }
func (c *ConstInt) Type() *Type      { return Int }
func (c *ConstInt) String() string   { return fmt.Sprintf("%d", c.Val) }

// Param is a formal parameter of a Function, referenced directly as an SSA value.
type Param struct {
	id    int
	Name  string
	Ty    *Type
	Index int
}

func (p *Param) ID() int        { return p.id }
func (p *Param) Type() *Type    { return p.Ty }
func (p *Param) String() string { return fmt.Sprintf("@%s", p.Name) }

// Global is a module-level variable, always addressed through a pointer value.
type Global struct {
	id    int
	Name  string
	Ty    *Type // element type (the array/int being stored, not the pointer)
	Const bool
	Init  *RawAggregate // fully shaped initializer, nil if zero-initialized
	Words []int32       // Init folded to concrete storage words, row-major; nil if zero-initialized
}

func (g *Global) ID() int        { return g.id }
func (g *Global) Type() *Type    { return Pointer(g.Ty) }
func (g *Global) String() string { return fmt.Sprintf("@%s", g.Name) }

// Alloc reserves a stack slot of the given type and yields a pointer to it.
type Alloc struct {
	id int
	Ty *Type
}

func (a *Alloc) ID() int        { return a.id }
func (a *Alloc) Type() *Type    { return Pointer(a.Ty) }
func (a *Alloc) String() string { return fmt.Sprintf("%%%d = alloc %s", a.id, a.Ty) }

// Load reads the scalar value pointed to by Ptr.
type Load struct {
	id  int
	Ptr Value
}

func (l *Load) ID() int        { return l.id }
func (l *Load) Type() *Type    { return Int }
func (l *Load) String() string { return fmt.Sprintf("%%%d = load %s", l.id, l.Ptr) }

// Store writes Val to the location pointed to by Ptr. It produces no value
// and is only ever appended, never referenced as an operand.
type Store struct {
	id  int
	Ptr Value
	Val Value
}

func (s *Store) ID() int        { return s.id }
func (s *Store) Type() *Type    { return Void }
func (s *Store) String() string { return fmt.Sprintf("store %s, %s", s.Val, s.Ptr) }

// GetElemPtr indexes one dimension into Ptr (a pointer to an array or to its
// element), yielding a pointer to the selected sub-object. Multi-dimensional
// indexing is a chain of GetElemPtr values, one per bracket in the source.
type GetElemPtr struct {
	id    int
	Ptr   Value
	Index Value
	Elem  *Type
}

func (g *GetElemPtr) ID() int        { return g.id }
func (g *GetElemPtr) Type() *Type    { return Pointer(g.Elem) }
func (g *GetElemPtr) String() string { return fmt.Sprintf("%%%d = getelemptr %s, %s", g.id, g.Ptr, g.Index) }

// Binary computes a dyadic arithmetic or relational operator.
type Binary struct {
	id   int
	Op   BinOp
	L, R Value
}

func (b *Binary) ID() int        { return b.id }
func (b *Binary) Type() *Type    { return Int }
func (b *Binary) String() string { return fmt.Sprintf("%%%d = %s %s, %s", b.id, b.Op, b.L, b.R) }

// Unary computes a monadic operator.
type Unary struct {
	id int
	Op UnOp
	X  Value
}

func (u *Unary) ID() int        { return u.id }
func (u *Unary) Type() *Type    { return Int }
func (u *Unary) String() string { return fmt.Sprintf("%%%d = %s %s", u.id, u.Op, u.X) }

// Call invokes a Function with the given arguments. Its value is the
// returned int, or unused when calling a void function.
type Call struct {
	id     int
	Callee *Function
	Args   []Value
}

func (c *Call) ID() int     { return c.id }
func (c *Call) Type() *Type { return c.Callee.Ret }
func (c *Call) String() string {
	return fmt.Sprintf("%%%d = call @%s(%d args)", c.id, c.Callee.Name, len(c.Args))
}

// Jump unconditionally transfers control to Target. A block terminator.
type Jump struct {
	id     int
	Target *Block
}

func (j *Jump) ID() int        { return j.id }
func (j *Jump) Type() *Type    { return Void }
func (j *Jump) String() string { return fmt.Sprintf("jump %%%s", j.Target.Label) }

// Branch transfers control to Then if Cond is non-zero, else to Else. A block terminator.
type Branch struct {
	id         int
	Cond       Value
	Then, Else *Block
}

func (b *Branch) ID() int     { return b.id }
func (b *Branch) Type() *Type { return Void }
func (b *Branch) String() string {
	return fmt.Sprintf("branch %s, %%%s, %%%s", b.Cond, b.Then.Label, b.Else.Label)
}

// Ret returns from the enclosing function, optionally with a value. A block terminator.
type Ret struct {
	id  int
	Val Value // nil for a void return
}

func (r *Ret) ID() int     { return r.id }
func (r *Ret) Type() *Type { return Void }
func (r *Ret) String() string {
	if r.Val == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", r.Val)
}

// isTerminator reports whether v ends a basic block.
func isTerminator(v Value) bool {
	switch v.(type) {
	case *Jump, *Branch, *Ret:
		return true
	default:
		return false
	}
}
