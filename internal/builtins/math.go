package builtins

import (
	"math"

	"glass/internal/ir"
)

// registerMath wires the A class (spec.md §4.5). Non-commutative ops: the
// spec states operands as "x y" on the stack (x deeper, y on top) and
// computes "y op x" — the value popped first (y) is the left operand, the
// value popped second (x) is the right operand. popTwoNumbers returns
// (x, y) in declared (deepest-first) order, so every non-commutative op
// below computes y-then-x explicitly.
func registerMath(c Catalog) {
	c[ir.BuiltinMathAdd] = func(env Env) error {
		x, y, err := popTwoNumbers(env, "A.a")
		if err != nil {
			return err
		}
		env.Push(ir.Number(y + x))
		return nil
	}
	c[ir.BuiltinMathSub] = func(env Env) error {
		x, y, err := popTwoNumbers(env, "A.s")
		if err != nil {
			return err
		}
		env.Push(ir.Number(y - x))
		return nil
	}
	c[ir.BuiltinMathMul] = func(env Env) error {
		x, y, err := popTwoNumbers(env, "A.m")
		if err != nil {
			return err
		}
		env.Push(ir.Number(y * x))
		return nil
	}
	c[ir.BuiltinMathDiv] = func(env Env) error {
		x, y, err := popTwoNumbers(env, "A.d")
		if err != nil {
			return err
		}
		env.Push(ir.Number(y / x))
		return nil
	}
	c[ir.BuiltinMathMod] = func(env Env) error {
		x, y, err := popTwoNumbers(env, "A.mod")
		if err != nil {
			return err
		}
		env.Push(ir.Number(math.Mod(y, x)))
		return nil
	}
	c[ir.BuiltinMathFloor] = func(env Env) error {
		x, err := popNumber(env, "A.f")
		if err != nil {
			return err
		}
		env.Push(ir.Number(math.Floor(x)))
		return nil
	}
	c[ir.BuiltinMathEqual] = boolCmp("A.e", func(x, y float64) bool { return x == y })
	c[ir.BuiltinMathNotEqual] = boolCmp("A.ne", func(x, y float64) bool { return x != y })
	c[ir.BuiltinMathLess] = boolCmp("A.lt", func(x, y float64) bool { return y < x })
	c[ir.BuiltinMathLessEqual] = boolCmp("A.le", func(x, y float64) bool { return y <= x })
	c[ir.BuiltinMathGreater] = boolCmp("A.gt", func(x, y float64) bool { return y > x })
	c[ir.BuiltinMathGreaterEqual] = boolCmp("A.ge", func(x, y float64) bool { return y >= x })
}

func boolCmp(name string, cmp func(x, y float64) bool) Builtin {
	return func(env Env) error {
		x, y, err := popTwoNumbers(env, name)
		if err != nil {
			return err
		}
		if cmp(x, y) {
			env.Push(ir.Number(1))
		} else {
			env.Push(ir.Number(0))
		}
		return nil
	}
}
