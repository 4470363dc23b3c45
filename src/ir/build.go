// build.go lowers the parsed AST into the SSA IR (component E): it walks
// each function body threading a "current block" cursor through every
// statement and expression, opening new blocks for if/while and for the
// short-circuit lowering of '&&'/'||', and leaving sealed/ghost blocks (see
// ir.go) to silently absorb anything built after a return/break/continue.

package ir

import (
	"slc/src/frontend"
)

type loopCtx struct {
	continueTarget *Block
	breakTarget    *Block
}

// builder carries the state live across one whole program lowering.
type builder struct {
	prog  *Program
	funcs funcTab
	vt    *valTab
	loops []loopCtx
}

// Build lowers a parsed SL translation unit into a Program.
func Build(items []frontend.Item) (*Program, error) {
	b := &builder{prog: &Program{}, funcs: make(funcTab)}
	installPrelude(b.funcs)

	// Pass 1: register every function signature so calls may forward-reference.
	for _, it1 := range items {
		if fn, ok := it1.(*frontend.Func); ok {
			f, err := b.declareFuncSignature(fn)
			if err != nil {
				return nil, err
			}
			b.funcs[fn.Ident] = f
		}
	}

	// Pass 2: lower global declarations in source order, so later globals may
	// reference earlier consts/dims.
	b.vt = newValTab()
	for _, it1 := range items {
		if g, ok := it1.(*frontend.Global); ok {
			for _, d1 := range g.Decls {
				if err := b.lowerGlobalDecl(d1); err != nil {
					return nil, err
				}
			}
		}
	}

	// Pass 3: lower each function body.
	for _, it1 := range items {
		if fn, ok := it1.(*frontend.Func); ok {
			f := b.funcs[fn.Ident]
			if err := b.lowerFuncBody(f, fn); err != nil {
				return nil, err
			}
			b.prog.Funcs = append(b.prog.Funcs, f)
		}
	}
	return b.prog, nil
}

// installPrelude seeds funcs with the fixed externally linked I/O/timing
// routines every SL program may call without declaring, per the canonical
// signatures getint/getch/getarray/putint/putch/putarray/starttime/stoptime.
// These carry no Blocks/Entry: they are never lowered or appended to
// Program.Funcs, only resolved as call targets; the assembler emits a bare
// `call` to their externally linked symbol the same as any other callee.
func installPrelude(funcs funcTab) {
	arrParam := func(name string) *Param {
		return &Param{id: nextID(), Name: name, Ty: Pointer(Array(Int, 0))}
	}
	intParam := func(name string) *Param {
		return &Param{id: nextID(), Name: name, Ty: Int}
	}
	prelude := []*Function{
		{Name: "getint", Ret: Int},
		{Name: "getch", Ret: Int},
		{Name: "getarray", Ret: Int, Params: []*Param{arrParam("a")}},
		{Name: "putint", Ret: Void, Params: []*Param{intParam("a")}},
		{Name: "putch", Ret: Void, Params: []*Param{intParam("a")}},
		{Name: "putarray", Ret: Void, Params: []*Param{intParam("n"), arrParam("a")}},
		{Name: "starttime", Ret: Void},
		{Name: "stoptime", Ret: Void},
	}
	for _, p1 := range prelude {
		for j1, pp1 := range p1.Params {
			pp1.Index = j1
		}
		funcs[p1.Name] = p1
	}
}

// ------------------------
// ----- Declarations -----
// ------------------------

func resolveDeclType(ty frontend.Ty, env constEnv, eval func(frontend.Exp, constEnv) (int32, bool), line int) (*Type, []int, error) {
	if ty.Kind != frontend.TyArray {
		return Int, nil, nil
	}
	dims := make([]int, len(ty.Dims))
	for i1, d1 := range ty.Dims {
		v, ok := eval(d1, env)
		if !ok || v <= 0 {
			return nil, nil, newErr(ArrayTypeFailure, line, "array dimension %d is not a positive constant expression", i1)
		}
		dims[i1] = int(v)
	}
	full := arrayTypeFromDims(dims, Int)
	return full, dims, nil
}

func arrayTypeFromDims(dims []int, base *Type) *Type {
	t := base
	for i1 := len(dims) - 1; i1 >= 0; i1-- {
		t = Array(t, dims[i1])
	}
	return t
}

// globalConstEnv snapshots the folded values of every global const declared so far.
func (b *builder) globalConstEnv() constEnv {
	env := make(constEnv)
	top := b.vt.scopes[0]
	for name, sym := range top {
		if sym.Const && sym.Ty.Kind == KindInt {
			env[name] = sym.ConstVal
		}
	}
	return env
}

func (b *builder) lowerGlobalDecl(d *frontend.Decl) error {
	env := b.globalConstEnv()
	ty, _, err := resolveDeclType(d.Ty, env, b.eval, d.Line)
	if err != nil {
		return err
	}
	isConst := d.Kind == frontend.KindConst

	if ty.Kind == KindInt {
		var val int32
		if d.Init != nil {
			iv, ok := d.Init.(*frontend.InitValue)
			if !ok {
				return newErr(ArrayTypeFailure, d.Line, "scalar %q cannot take a brace initializer", d.Ident)
			}
			v, ok := b.eval(iv.Exp, env)
			if !ok {
				return newErr(ConstEvalFailure, d.Line, "global initializer for %q is not a constant expression", d.Ident)
			}
			val = v
		}
		g := &Global{id: nextID(), Name: d.Ident, Ty: Int, Const: isConst}
		if d.Init != nil || isConst {
			g.Init = &RawAggregate{Leaf: &frontend.LiteralExp{Val: val}}
			g.Words = []int32{val}
		}
		b.prog.Globals = append(b.prog.Globals, g)
		if !b.vt.declare(d.Ident, &symbol{Addr: g, Ty: Int, Const: isConst, ConstVal: val}) {
			return newErr(Redeclaration, d.Line, "%q is already declared at file scope", d.Ident)
		}
		return nil
	}

	ra, err := Shape(ty, d.Init, d.Line)
	if err != nil {
		return err
	}
	// Global array storage is laid out statically in .data regardless of
	// const-ness, so every leaf must fold at compile time.
	words, ok := ra.ConstWords(env, b.eval)
	if !ok {
		return newErr(ConstEvalFailure, d.Line, "global array initializer for %q is not a constant expression", d.Ident)
	}
	g := &Global{id: nextID(), Name: d.Ident, Ty: ty, Const: isConst, Init: ra, Words: words}
	b.prog.Globals = append(b.prog.Globals, g)
	if !b.vt.declare(d.Ident, &symbol{Addr: g, Ty: ty, Const: isConst}) {
		return newErr(Redeclaration, d.Line, "%q is already declared at file scope", d.Ident)
	}
	return nil
}

// ------------------------
// ----- Functions --------
// ------------------------

func (b *builder) declareFuncSignature(fn *frontend.Func) (*Function, error) {
	ret := Int
	if fn.Ret.Kind == frontend.TyVoid {
		ret = Void
	}
	f := &Function{Name: fn.Ident, Ret: ret}
	env := constEnv{}
	for i1, p1 := range fn.Params {
		var pty *Type
		if p1.Ty.Kind == frontend.TyArray {
			dims := make([]int, len(p1.Ty.Dims))
			for j1, d1 := range p1.Ty.Dims {
				v, ok := b.eval(d1, env)
				if !ok {
					return nil, newErr(ArrayTypeFailure, fn.Line, "parameter %q has a non-constant trailing dimension", p1.Ident)
				}
				dims[j1] = int(v)
			}
			row := arrayTypeFromDims(dims, Int)
			pty = Pointer(Array(row, 0))
		} else {
			pty = Int
		}
		f.Params = append(f.Params, &Param{id: nextID(), Name: p1.Ident, Ty: pty, Index: i1})
	}
	return f, nil
}

func (b *builder) lowerFuncBody(f *Function, fn *frontend.Func) error {
	b.vt.push()
	defer b.vt.pop()

	entry := f.NewBlock("entry")
	f.Entry = entry
	cur := entry

	for i1, p1 := range fn.Params {
		pv := f.Params[i1]
		if pv.Ty.Kind == KindPointer && pv.Ty.Elem.Kind == KindArray {
			// Decayed array parameter: the value itself is already an address.
			b.vt.declare(p1.Ident, &symbol{Addr: pv, Ty: pv.Ty})
			continue
		}
		addr := cur.CreateAlloc(Int)
		cur.CreateStore(pv, addr)
		b.vt.declare(p1.Ident, &symbol{Addr: addr, Ty: Int})
	}

	var err error
	cur, err = b.lowerBlock(cur, fn.Body, f)
	if err != nil {
		return err
	}
	if !cur.Terminated() {
		if f.Ret.Kind == KindVoid {
			cur.CreateRet(nil)
		} else {
			// Falling off the end of an int function with no return is
			// undefined in SL; slc emits a defined zero return rather than a
			// malformed assembly function.
			cur.CreateRet(cur.CreateConstInt(0))
		}
	}
	return nil
}

// ------------------------
// ----- Blocks/stmts ------
// ------------------------

func (b *builder) lowerBlock(cur *Block, blk frontend.Block, f *Function) (*Block, error) {
	b.vt.push()
	defer b.vt.pop()
	var err error
	for _, bi1 := range blk.Items {
		switch v := bi1.(type) {
		case *frontend.DeclItem:
			for _, d1 := range v.Decls {
				cur, err = b.lowerLocalDecl(cur, d1, f)
				if err != nil {
					return nil, err
				}
			}
		case *frontend.StmtItem:
			cur, err = b.lowerStmt(cur, v.Stmt, f)
			if err != nil {
				return nil, err
			}
		}
	}
	return cur, nil
}

func (b *builder) lowerLocalDecl(cur *Block, d *frontend.Decl, f *Function) (*Block, error) {
	env := b.globalConstEnv()
	for _, s1 := range b.vt.scopes[1:] {
		for name, sym := range s1 {
			if sym.Const && sym.Ty.Kind == KindInt {
				env[name] = sym.ConstVal
			} else {
				delete(env, name)
			}
		}
	}
	ty, _, err := resolveDeclType(d.Ty, env, b.eval, d.Line)
	if err != nil {
		return nil, err
	}
	isConst := d.Kind == frontend.KindConst

	if ty.Kind == KindInt && isConst {
		var val int32
		if d.Init != nil {
			iv, ok := d.Init.(*frontend.InitValue)
			if !ok {
				return nil, newErr(ArrayTypeFailure, d.Line, "scalar %q cannot take a brace initializer", d.Ident)
			}
			v, ok := b.eval(iv.Exp, env)
			if !ok {
				return nil, newErr(ConstEvalFailure, d.Line, "const %q requires a constant initializer", d.Ident)
			}
			val = v
		}
		if !b.vt.declare(d.Ident, &symbol{Ty: Int, Const: true, ConstVal: val}) {
			return nil, newErr(Redeclaration, d.Line, "%q is already declared in this scope", d.Ident)
		}
		return cur, nil
	}

	addr := cur.CreateAlloc(ty)
	if !b.vt.declare(d.Ident, &symbol{Addr: addr, Ty: ty, Const: isConst}) {
		return nil, newErr(Redeclaration, d.Line, "%q is already declared in this scope", d.Ident)
	}
	if d.Init == nil {
		return cur, nil
	}
	ra, err := Shape(ty, d.Init, d.Line)
	if err != nil {
		return nil, err
	}
	return b.storeAggregate(cur, addr, ra)
}

func (b *builder) storeAggregate(cur *Block, addr Value, ra *RawAggregate) (*Block, error) {
	if ra.Dims == nil {
		val, next, err := b.lowerExp(cur, ra.Leaf)
		if err != nil {
			return nil, err
		}
		next.CreateStore(val, addr)
		return next, nil
	}
	for i1, sub := range ra.Elems {
		idx := cur.CreateConstInt(int32(i1))
		elemPtr := cur.CreateGEP(addr, idx)
		var err error
		cur, err = b.storeAggregate(cur, elemPtr, sub)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (b *builder) lowerStmt(cur *Block, s frontend.Stmt, f *Function) (*Block, error) {
	switch n := s.(type) {
	case *frontend.UnitStmt:
		return cur, nil

	case *frontend.ExpStmt:
		_, next, err := b.lowerExp(cur, n.Exp)
		return next, err

	case *frontend.BlockStmt:
		return b.lowerBlock(cur, n.Block, f)

	case *frontend.AssignStmt:
		return b.lowerAssign(cur, n)

	case *frontend.IfStmt:
		return b.lowerIf(cur, n, f)

	case *frontend.WhileStmt:
		return b.lowerWhile(cur, n, f)

	case *frontend.BreakStmt:
		if len(b.loops) == 0 {
			return nil, newErr(InternalError, 0, "break outside of a loop")
		}
		cur.CreateJump(b.loops[len(b.loops)-1].breakTarget)
		return cur, nil

	case *frontend.ContinueStmt:
		if len(b.loops) == 0 {
			return nil, newErr(InternalError, 0, "continue outside of a loop")
		}
		cur.CreateJump(b.loops[len(b.loops)-1].continueTarget)
		return cur, nil

	case *frontend.ReturnStmt:
		if n.Exp == nil {
			cur.CreateRet(nil)
			return cur, nil
		}
		val, next, err := b.lowerExp(cur, n.Exp)
		if err != nil {
			return nil, err
		}
		next.CreateRet(val)
		return next, nil

	default:
		return nil, newErr(InternalError, 0, "unsupported statement construct")
	}
}

func (b *builder) lowerAssign(cur *Block, n *frontend.AssignStmt) (*Block, error) {
	sym, ok := b.vt.lookup(n.LVal.Ident)
	if !ok {
		return nil, newErr(UndefinedSymbol, n.LVal.Line, "undefined identifier %q", n.LVal.Ident)
	}
	if sym.Const {
		return nil, newErr(InvalidLValAssignment, n.LVal.Line, "cannot assign to const %q", n.LVal.Ident)
	}
	addr, next, err := b.lvalAddr(cur, sym, n.LVal)
	if err != nil {
		return nil, err
	}
	val, next, err := b.lowerExp(next, n.Exp)
	if err != nil {
		return nil, err
	}
	next.CreateStore(val, addr)
	return next, nil
}

// lvalAddr computes the address an LVal designates, peeling one array
// dimension per index through CreateGEP.
func (b *builder) lvalAddr(cur *Block, sym *symbol, lv frontend.LVal) (Value, *Block, error) {
	addr := sym.Addr
	for _, idxExp := range lv.Indices {
		idxVal, next, err := b.lowerExp(cur, idxExp)
		if err != nil {
			return nil, nil, err
		}
		cur = next
		if addr.Type().Kind != KindPointer || addr.Type().Elem.Kind != KindArray {
			return nil, nil, newErr(ConstArrayIndexError, lv.Line, "too many indices on %q", lv.Ident)
		}
		addr = cur.CreateGEP(addr, idxVal)
	}
	return addr, cur, nil
}

func (b *builder) lowerIf(cur *Block, n *frontend.IfStmt, f *Function) (*Block, error) {
	thenB := f.NewBlock("if_then")
	mergeB := f.NewBlock("if_end")
	var elseB *Block
	if n.Else != nil {
		elseB = f.NewBlock("if_else")
	} else {
		elseB = mergeB
	}
	if err := b.lowerCond(cur, n.Cond, thenB, elseB); err != nil {
		return nil, err
	}
	thenOut, err := b.lowerStmt(thenB, n.Then, f)
	if err != nil {
		return nil, err
	}
	if !thenOut.Terminated() {
		thenOut.CreateJump(mergeB)
	}
	if n.Else != nil {
		elseOut, err := b.lowerStmt(elseB, n.Else, f)
		if err != nil {
			return nil, err
		}
		if !elseOut.Terminated() {
			elseOut.CreateJump(mergeB)
		}
	}
	return mergeB, nil
}

func (b *builder) lowerWhile(cur *Block, n *frontend.WhileStmt, f *Function) (*Block, error) {
	headB := f.NewBlock("while_head")
	bodyB := f.NewBlock("while_body")
	endB := f.NewBlock("while_end")
	cur.CreateJump(headB)

	if err := b.lowerCond(headB, n.Cond, bodyB, endB); err != nil {
		return nil, err
	}

	b.loops = append(b.loops, loopCtx{continueTarget: headB, breakTarget: endB})
	bodyOut, err := b.lowerStmt(bodyB, n.Body, f)
	b.loops = b.loops[:len(b.loops)-1]
	if err != nil {
		return nil, err
	}
	if !bodyOut.Terminated() {
		bodyOut.CreateJump(headB)
	}
	return endB, nil
}

// lowerCond lowers e as a branch condition, terminating cur (and any
// intermediate blocks '&&'/'||' open) with a branch to trueB or falseB.
func (b *builder) lowerCond(cur *Block, e frontend.Exp, trueB, falseB *Block) error {
	if bin, ok := e.(*frontend.BinaryExp); ok {
		switch bin.Op {
		case frontend.BinLAnd:
			rhs := cur.f.NewBlock("and_rhs")
			if err := b.lowerCond(cur, bin.L, rhs, falseB); err != nil {
				return err
			}
			return b.lowerCond(rhs, bin.R, trueB, falseB)
		case frontend.BinLOr:
			rhs := cur.f.NewBlock("or_rhs")
			if err := b.lowerCond(cur, bin.L, trueB, rhs); err != nil {
				return err
			}
			return b.lowerCond(rhs, bin.R, trueB, falseB)
		}
	}
	if un, ok := e.(*frontend.UnaryExp); ok && un.Op == frontend.OpNot {
		return b.lowerCond(cur, un.E, falseB, trueB)
	}
	val, next, err := b.lowerExp(cur, e)
	if err != nil {
		return err
	}
	next.CreateBranch(val, trueB, falseB)
	return nil
}

// ------------------------
// ----- Expressions -------
// ------------------------

func (b *builder) lowerExp(cur *Block, e frontend.Exp) (Value, *Block, error) {
	switch n := e.(type) {
	case *frontend.LiteralExp:
		return cur.CreateConstInt(n.Val), cur, nil

	case *frontend.LValExp:
		return b.lowerLValRead(cur, n.LVal)

	case *frontend.UnaryExp:
		x, next, err := b.lowerExp(cur, n.E)
		if err != nil {
			return nil, nil, err
		}
		switch n.Op {
		case frontend.OpNeg:
			return next.CreateUnary(Neg, x), next, nil
		case frontend.OpNot:
			return next.CreateUnary(Not, x), next, nil
		}
		return nil, nil, newErr(InternalError, 0, "unsupported unary operator")

	case *frontend.BinaryExp:
		if n.Op == frontend.BinLAnd || n.Op == frontend.BinLOr {
			return b.lowerLogicalValue(cur, n)
		}
		l, next, err := b.lowerExp(cur, n.L)
		if err != nil {
			return nil, nil, err
		}
		r, next2, err := b.lowerExp(next, n.R)
		if err != nil {
			return nil, nil, err
		}
		return next2.CreateBinary(astToIRBinOp(n.Op), l, r), next2, nil

	case *frontend.CallExp:
		callee, ok := b.funcs.lookup(n.Ident)
		if !ok {
			return nil, nil, newErr(UndefinedFunc, n.Line, "call to undefined function %q", n.Ident)
		}
		if len(n.Args) != len(callee.Params) {
			return nil, nil, newErr(ArgCountMismatch, n.Line, "%q expects %d arguments, got %d", n.Ident, len(callee.Params), len(n.Args))
		}
		args := make([]Value, len(n.Args))
		cur2 := cur
		for i1, a1 := range n.Args {
			v, next, err := b.lowerExp(cur2, a1)
			if err != nil {
				return nil, nil, err
			}
			args[i1] = v
			cur2 = next
		}
		return cur2.CreateCall(callee, args), cur2, nil

	default:
		return nil, nil, newErr(InternalError, 0, "unsupported expression construct")
	}
}

// lowerLogicalValue materialises the 0/1 result of '&&'/'||' used as an
// ordinary value (as opposed to a branch condition): alloc a result slot,
// branch short-circuit style, store the outcome on each path, then load it
// back in a merge block (§4.4.3).
func (b *builder) lowerLogicalValue(cur *Block, e *frontend.BinaryExp) (Value, *Block, error) {
	f := cur.f
	slot := cur.CreateAlloc(Int)
	trueB := f.NewBlock("sc_true")
	falseB := f.NewBlock("sc_false")
	mergeB := f.NewBlock("sc_merge")

	if err := b.lowerCond(cur, e, trueB, falseB); err != nil {
		return nil, nil, err
	}
	trueB.CreateStore(trueB.CreateConstInt(1), slot)
	trueB.CreateJump(mergeB)
	falseB.CreateStore(falseB.CreateConstInt(0), slot)
	falseB.CreateJump(mergeB)

	return mergeB.CreateLoad(slot), mergeB, nil
}

func (b *builder) lowerLValRead(cur *Block, lv frontend.LVal) (Value, *Block, error) {
	sym, ok := b.vt.lookup(lv.Ident)
	if !ok {
		return nil, nil, newErr(UndefinedSymbol, lv.Line, "undefined identifier %q", lv.Ident)
	}
	if len(lv.Indices) == 0 {
		if sym.Const && sym.Ty.Kind == KindInt {
			return cur.CreateConstInt(sym.ConstVal), cur, nil
		}
		if sym.Ty.Kind == KindArray || (sym.Ty.Kind == KindPointer && sym.Ty.Elem.Kind == KindArray) {
			// A bare array reference decays to its address -- sym.Addr is
			// already that address whether sym names in-frame array storage
			// or an already-decayed array parameter being forwarded on --
			// the same array-to-pointer decay a partially-indexed array
			// undergoes below. This is how whole arrays are passed to
			// functions and how an array parameter is forwarded by a call.
			return sym.Addr, cur, nil
		}
		return cur.CreateLoad(sym.Addr), cur, nil
	}
	addr, next, err := b.lvalAddr(cur, sym, lv)
	if err != nil {
		return nil, nil, err
	}
	if addr.Type().Elem.Kind == KindArray {
		// A partially-indexed array used by value decays to its address
		// (the remaining-dimension pointer), matching C array-to-pointer decay.
		return addr, next, nil
	}
	return next.CreateLoad(addr), next, nil
}

func astToIRBinOp(op frontend.BinOp) BinOp {
	switch op {
	case frontend.BinAdd:
		return Add
	case frontend.BinSub:
		return Sub
	case frontend.BinMul:
		return Mul
	case frontend.BinDiv:
		return Div
	case frontend.BinMod:
		return Mod
	case frontend.BinEq:
		return Eq
	case frontend.BinNeq:
		return Neq
	case frontend.BinLt:
		return Lt
	case frontend.BinGt:
		return Gt
	case frontend.BinLe:
		return Le
	case frontend.BinGe:
		return Ge
	default:
		return Add
	}
}
