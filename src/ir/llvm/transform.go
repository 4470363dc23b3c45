// Package llvm lowers a compiled ir.Program to textual LLVM IR via the
// tinygo.org/x/go-llvm cgo bindings, for the bonus -llvm driver mode.
// Grounded on the teacher's src/ir/llvm/transform.go module/builder/context
// idiom (genFuncHeader/genFuncBody/genExpression staging), rewritten from a
// tree-walk over a parse tree with scope stacks into a single pass over the
// new SSA ir.Program: every basic block maps one-to-one to an llvm.BasicBlock
// and every ir.Value maps one-to-one to an llvm.Value, so there is no symbol
// table to thread through at all.
package llvm

import (
	"fmt"
	"os"
	"path/filepath"

	"tinygo.org/x/go-llvm"

	"slc/src/ir"
	"slc/src/util"
)

// i32 is the only integer width this target ever materialises: SL has one
// scalar type and RV32 is a 32-bit architecture.
var i32 = llvm.Int32Type()

// translator carries the state threaded through one whole-program lowering.
type translator struct {
	ctx     llvm.Context
	mod     llvm.Module
	b       llvm.Builder
	globals map[*ir.Global]llvm.Value
	funcs   map[*ir.Function]llvm.Value
}

// GenLLVM translates prog and prints the resulting module's textual IR,
// either to opt.Out or to stdout.
func GenLLVM(opt util.Options, prog *ir.Program) error {
	ctx := llvm.NewContext()
	defer ctx.Dispose()
	b := ctx.NewBuilder()
	defer b.Dispose()

	name := "module"
	if len(opt.Src) > 0 {
		name = filepath.Base(opt.Src)
	}
	mod := ctx.NewModule(name)
	defer mod.Dispose()

	t := &translator{
		ctx:     ctx,
		mod:     mod,
		b:       b,
		globals: make(map[*ir.Global]llvm.Value, len(prog.Globals)),
		funcs:   make(map[*ir.Function]llvm.Value, len(prog.Funcs)),
	}

	for _, g1 := range prog.Globals {
		t.declareGlobal(g1)
	}
	for _, f1 := range prog.Funcs {
		t.declareFunc(f1)
	}
	for _, f1 := range prog.Funcs {
		if err := t.genFuncBody(f1); err != nil {
			return err
		}
	}

	if err := llvm.VerifyModule(mod, llvm.PrintMessageAction); err != nil {
		return fmt.Errorf("module verification failed: %s", err)
	}

	text := mod.String()
	var f *os.File
	if len(opt.Out) > 0 {
		var err error
		f, err = os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	w := util.NewWriter(f)
	w.WriteString(text)
	return w.Flush()
}

// llvmType maps an SL type to its LLVM counterpart.
func (t *translator) llvmType(ty *ir.Type) llvm.Type {
	switch ty.Kind {
	case ir.KindInt:
		return i32
	case ir.KindVoid:
		return t.ctx.VoidType()
	case ir.KindArray:
		return llvm.ArrayType(t.llvmType(ty.Elem), ty.Len)
	case ir.KindPointer:
		return llvm.PointerType(t.llvmType(ty.Elem), 0)
	default:
		panic("llvm: unhandled type kind")
	}
}

func (t *translator) declareGlobal(g *ir.Global) {
	gty := t.llvmType(g.Ty)
	gv := llvm.AddGlobal(t.mod, gty, g.Name)
	gv.SetLinkage(llvm.ExternalLinkage)
	if g.Const {
		gv.SetGlobalConstant(true)
	}
	if g.Words == nil {
		gv.SetInitializer(llvm.ConstNull(gty))
	} else {
		words := make([]llvm.Value, len(g.Words))
		for i1, w1 := range g.Words {
			words[i1] = llvm.ConstInt(i32, uint64(uint32(w1)), false)
		}
		if g.Ty.Kind == ir.KindInt {
			gv.SetInitializer(words[0])
		} else {
			gv.SetInitializer(llvm.ConstArray(i32, words))
		}
	}
	t.globals[g] = gv
}

func (t *translator) declareFunc(f *ir.Function) {
	params := make([]llvm.Type, len(f.Params))
	for i1, p1 := range f.Params {
		params[i1] = t.llvmType(p1.Ty)
	}
	fty := llvm.FunctionType(t.llvmType(f.Ret), params, false)
	fn := llvm.AddFunction(t.mod, f.Name, fty)
	t.funcs[f] = fn
}

// genFuncBody emits every basic block of f. Blocks are pre-created so that
// forward jumps and branches (a while loop's header referring to its own end
// block before that block has any instructions) resolve without a second pass.
func (t *translator) genFuncBody(f *ir.Function) error {
	fn := t.funcs[f]
	if len(f.Blocks) == 0 {
		return nil
	}

	blocks := make(map[*ir.Block]llvm.BasicBlock, len(f.Blocks))
	for _, b1 := range f.Blocks {
		blocks[b1] = llvm.AddBasicBlock(fn, b1.Label)
	}

	vals := make(map[ir.Value]llvm.Value)
	for i1, p1 := range f.Params {
		vals[p1] = fn.Param(i1)
	}

	for _, b1 := range f.Blocks {
		if len(b1.Instructions) == 0 && b1.Term == nil {
			continue // empty, unterminated block: nothing to lower
		}
		t.b.SetInsertPointAtEnd(blocks[b1])
		for _, inst := range b1.Instructions {
			if err := t.genInstruction(inst, vals, blocks); err != nil {
				return err
			}
		}
		if b1.Term != nil {
			if err := t.genTerm(b1.Term, vals, blocks); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *translator) genInstruction(inst ir.Value, vals map[ir.Value]llvm.Value, blocks map[*ir.Block]llvm.BasicBlock) error {
	switch v := inst.(type) {
	case *ir.Alloc:
		vals[v] = t.b.CreateAlloca(t.llvmType(v.Ty), "")

	case *ir.Load:
		ptr := t.operand(v.Ptr, vals)
		vals[v] = t.b.CreateLoad(ptr, "")

	case *ir.Store:
		ptr := t.operand(v.Ptr, vals)
		val := t.operand(v.Val, vals)
		t.b.CreateStore(val, ptr)

	case *ir.GetElemPtr:
		ptr := t.operand(v.Ptr, vals)
		idx := t.operand(v.Index, vals)
		zero := llvm.ConstInt(i32, 0, false)
		vals[v] = t.b.CreateGEP(ptr, []llvm.Value{zero, idx}, "")

	case *ir.Binary:
		l := t.operand(v.L, vals)
		r := t.operand(v.R, vals)
		vals[v] = genBinary(t.b, v.Op, l, r)

	case *ir.Unary:
		x := t.operand(v.X, vals)
		switch v.Op {
		case ir.Neg:
			vals[v] = t.b.CreateNeg(x, "")
		case ir.Not:
			zero := llvm.ConstInt(i32, 0, false)
			cond := t.b.CreateICmp(llvm.IntEQ, x, zero, "")
			vals[v] = t.b.CreateZExt(cond, i32, "")
		}

	case *ir.Call:
		args := make([]llvm.Value, len(v.Args))
		for i1, a1 := range v.Args {
			args[i1] = t.operand(a1, vals)
		}
		callee, ok := t.funcs[v.Callee]
		if !ok {
			// Prelude routines (getint, putint, ...) carry no Blocks and are
			// never in prog.Funcs, so they never went through declareFunc
			// above; declare them here on first call, same as any other
			// external symbol the assembler would resolve at link time.
			t.declareFunc(v.Callee)
			callee = t.funcs[v.Callee]
		}
		res := t.b.CreateCall(callee, args, "")
		if v.Callee.Ret != ir.Void {
			vals[v] = res
		}

	default:
		return fmt.Errorf("llvm: unhandled instruction %T", inst)
	}
	return nil
}

func (t *translator) genTerm(term ir.Value, vals map[ir.Value]llvm.Value, blocks map[*ir.Block]llvm.BasicBlock) error {
	switch v := term.(type) {
	case *ir.Ret:
		if v.Val == nil {
			t.b.CreateRetVoid()
		} else {
			t.b.CreateRet(t.operand(v.Val, vals))
		}
	case *ir.Jump:
		t.b.CreateBr(blocks[v.Target])
	case *ir.Branch:
		cond := t.operand(v.Cond, vals)
		zero := llvm.ConstInt(i32, 0, false)
		boolCond := t.b.CreateICmp(llvm.IntNE, cond, zero, "")
		t.b.CreateCondBr(boolCond, blocks[v.Then], blocks[v.Else])
	default:
		return fmt.Errorf("llvm: unhandled terminator %T", term)
	}
	return nil
}

// operand resolves v to an llvm.Value, materialising literal constants and
// global addresses on demand since those never go through vals.
func (t *translator) operand(v ir.Value, vals map[ir.Value]llvm.Value) llvm.Value {
	switch n := v.(type) {
	case *ir.ConstInt:
		return llvm.ConstInt(i32, uint64(uint32(n.Val)), false)
	case *ir.Global:
		return t.globals[n]
	default:
		return vals[v]
	}
}

func genBinary(b llvm.Builder, op ir.BinOp, l, r llvm.Value) llvm.Value {
	switch op {
	case ir.Add:
		return b.CreateAdd(l, r, "")
	case ir.Sub:
		return b.CreateSub(l, r, "")
	case ir.Mul:
		return b.CreateMul(l, r, "")
	case ir.Div:
		return b.CreateSDiv(l, r, "")
	case ir.Mod:
		return b.CreateSRem(l, r, "")
	case ir.Eq:
		return b.CreateZExt(b.CreateICmp(llvm.IntEQ, l, r, ""), i32, "")
	case ir.Neq:
		return b.CreateZExt(b.CreateICmp(llvm.IntNE, l, r, ""), i32, "")
	case ir.Lt:
		return b.CreateZExt(b.CreateICmp(llvm.IntSLT, l, r, ""), i32, "")
	case ir.Gt:
		return b.CreateZExt(b.CreateICmp(llvm.IntSGT, l, r, ""), i32, "")
	case ir.Le:
		return b.CreateZExt(b.CreateICmp(llvm.IntSLE, l, r, ""), i32, "")
	case ir.Ge:
		return b.CreateZExt(b.CreateICmp(llvm.IntSGE, l, r, ""), i32, "")
	default:
		panic("llvm: unhandled binary operator")
	}
}
