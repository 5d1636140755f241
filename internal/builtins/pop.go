package builtins

import "glass/internal/ir"

// popN pops n values off the stack and returns them in spec order (the
// first return value is the one declared deepest in spec.md's tables); the
// stack itself is popped LIFO, so this reverses what Env.Pop() yields.
func popN(env Env, n int) ([]ir.Value, error) {
	vals := make([]ir.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := env.Pop()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func popNumber(env Env, builtin string) (float64, error) {
	v, err := env.Pop()
	if err != nil {
		return 0, err
	}
	if v.Kind != ir.KindNumber {
		return 0, errWrongType(builtin, "number", v.TypeName())
	}
	return v.Num, nil
}

func popString(env Env, builtin string) ([]byte, error) {
	v, err := env.Pop()
	if err != nil {
		return nil, err
	}
	if v.Kind != ir.KindString {
		return nil, errWrongType(builtin, "string", v.TypeName())
	}
	return v.Str, nil
}

func popTwoNumbers(env Env, builtin string) (x, y float64, err error) {
	vals, err := popN(env, 2)
	if err != nil {
		return 0, 0, err
	}
	for _, v := range vals {
		if v.Kind != ir.KindNumber {
			return 0, 0, errWrongType(builtin, "number", v.TypeName())
		}
	}
	return vals[0].Num, vals[1].Num, nil
}
