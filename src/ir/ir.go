// ir.go defines the CFG container types (Program, Function, Block) and the
// Create* builder methods used to append instructions. A Block that has
// already received a terminator is "sealed": further Create* calls still
// succeed (the lowering walk for dead code after break/continue/return is
// simpler if it need not special-case every call site) but are redirected
// into a detached ghost block that is never linked into the function and
// never reaches codegen. Grounded on the teacher's src/ir/lir/block.go
// builder-method idiom.

package ir

import "fmt"

// Program is the whole compiled unit: its globals and functions.
type Program struct {
	Globals []*Global
	Funcs   []*Function
}

// Function is one SL function definition: its signature, parameters and body blocks.
type Function struct {
	Name    string
	Ret     *Type
	Params  []*Param
	Blocks  []*Block
	Entry   *Block
	Leaf    bool // no Call instructions anywhere in the body; set by the frame planner
	nextBID int
}

// NewBlock creates and appends a new basic block to f, with a fresh label.
func (f *Function) NewBlock(kind string) *Block {
	b := &Block{f: f, Label: fmt.Sprintf("%s%d", kind, f.nextBID)}
	f.nextBID++
	f.Blocks = append(f.Blocks, b)
	return b
}

// ghost allocates a block that is never appended to f.Blocks: a landing pad
// for instructions built after a block already terminated.
func (f *Function) ghost() *Block {
	return &Block{f: f, Label: "unreachable", sealed: true}
}

// Block is a single-entry, single-exit run of instructions ending in exactly
// one terminator (Jump, Branch or Ret).
type Block struct {
	f            *Function
	Label        string
	Instructions []Value
	Term         Value
	sealed       bool
}

// target returns the block new instructions should actually land in: b
// itself, unless b is already terminated, in which case a throwaway ghost
// block absorbs anything appended after the dead point.
func (b *Block) target() *Block {
	if b.Term != nil || b.sealed {
		return b.f.ghost()
	}
	return b
}

func (b *Block) append(v Value) Value {
	t := b.target()
	if isTerminator(v) {
		t.Term = v
	} else {
		t.Instructions = append(t.Instructions, v)
	}
	return v
}

// Terminated reports whether this block already has a terminator (a prior
// return/break/continue made everything after it unreachable).
func (b *Block) Terminated() bool { return b.Term != nil }

func (b *Block) CreateConstInt(v int32) *ConstInt { return NewConstInt(v) }

func (b *Block) CreateAlloc(ty *Type) *Alloc {
	v := &Alloc{id: nextID(), Ty: ty}
	b.append(v)
	return v
}

func (b *Block) CreateLoad(ptr Value) *Load {
	if ptr.Type().Kind != KindPointer {
		panic(fmt.Sprintf("CreateLoad: operand is not a pointer: %s", ptr.Type()))
	}
	v := &Load{id: nextID(), Ptr: ptr}
	b.append(v)
	return v
}

func (b *Block) CreateStore(val, ptr Value) *Store {
	if ptr.Type().Kind != KindPointer {
		panic(fmt.Sprintf("CreateStore: destination is not a pointer: %s", ptr.Type()))
	}
	v := &Store{id: nextID(), Ptr: ptr, Val: val}
	b.append(v)
	return v
}

func (b *Block) CreateGEP(ptr, index Value) *GetElemPtr {
	if ptr.Type().Kind != KindPointer {
		panic(fmt.Sprintf("CreateGEP: base is not a pointer: %s", ptr.Type()))
	}
	elem := ptr.Type().Elem
	if elem.Kind == KindArray {
		elem = elem.Elem
	}
	v := &GetElemPtr{id: nextID(), Ptr: ptr, Index: index, Elem: elem}
	b.append(v)
	return v
}

func (b *Block) CreateBinary(op BinOp, l, r Value) *Binary {
	v := &Binary{id: nextID(), Op: op, L: l, R: r}
	b.append(v)
	return v
}

func (b *Block) CreateUnary(op UnOp, x Value) *Unary {
	v := &Unary{id: nextID(), Op: op, X: x}
	b.append(v)
	return v
}

func (b *Block) CreateCall(callee *Function, args []Value) *Call {
	v := &Call{id: nextID(), Callee: callee, Args: args}
	b.append(v)
	return v
}

func (b *Block) CreateJump(target *Block) *Jump {
	v := &Jump{id: nextID(), Target: target}
	b.append(v)
	return v
}

func (b *Block) CreateBranch(cond Value, then, els *Block) *Branch {
	v := &Branch{id: nextID(), Cond: cond, Then: then, Else: els}
	b.append(v)
	return v
}

func (b *Block) CreateRet(val Value) *Ret {
	v := &Ret{id: nextID(), Val: val}
	b.append(v)
	return v
}
