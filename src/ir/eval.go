// eval.go implements the compile-time constant evaluator used for array
// dimensions and const initializers: eval(exp, env) yields a definite int32
// or reports that exp is not a constant expression. No side effects, no
// partial evaluation: an expression is either fully foldable or it isn't.

package ir

import "slc/src/frontend"

// constEnv maps identifiers already known to be compile-time constants to
// their folded value. Array constants fold element-wise and are not
// representable here; only scalar consts and loop-free arithmetic over them
// are supported, matching what SL's grammar allows in a const position.
type constEnv map[string]int32

func (b *builder) eval(e frontend.Exp, env constEnv) (int32, bool) {
	switch n := e.(type) {
	case *frontend.LiteralExp:
		return n.Val, true

	case *frontend.LValExp:
		if len(n.LVal.Indices) != 0 {
			return 0, false
		}
		v, ok := env[n.LVal.Ident]
		return v, ok

	case *frontend.UnaryExp:
		x, ok := b.eval(n.E, env)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case frontend.OpNeg:
			return -x, true
		case frontend.OpNot:
			if x == 0 {
				return 1, true
			}
			return 0, true
		}
		return 0, false

	case *frontend.BinaryExp:
		l, ok := b.eval(n.L, env)
		if !ok {
			return 0, false
		}
		// Short-circuit operators still fold when both sides are constant;
		// the runtime lowering (not this evaluator) is what actually
		// short-circuits at execution time.
		r, ok := b.eval(n.R, env)
		if !ok {
			return 0, false
		}
		return evalBinOp(n.Op, l, r)

	default:
		return 0, false
	}
}

func evalBinOp(op frontend.BinOp, l, r int32) (int32, bool) {
	boolToI32 := func(v bool) int32 {
		if v {
			return 1
		}
		return 0
	}
	switch op {
	case frontend.BinAdd:
		return l + r, true
	case frontend.BinSub:
		return l - r, true
	case frontend.BinMul:
		return l * r, true
	case frontend.BinDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case frontend.BinMod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case frontend.BinEq:
		return boolToI32(l == r), true
	case frontend.BinNeq:
		return boolToI32(l != r), true
	case frontend.BinLt:
		return boolToI32(l < r), true
	case frontend.BinGt:
		return boolToI32(l > r), true
	case frontend.BinLe:
		return boolToI32(l <= r), true
	case frontend.BinGe:
		return boolToI32(l >= r), true
	case frontend.BinLAnd:
		return boolToI32(l != 0 && r != 0), true
	case frontend.BinLOr:
		return boolToI32(l != 0 || r != 0), true
	default:
		return 0, false
	}
}
