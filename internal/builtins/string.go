package builtins

import "glass/internal/ir"

// registerString wires the S class (spec.md §4.5).
func registerString(c Catalog) {
	c[ir.BuiltinStrLength] = func(env Env) error {
		s, err := popString(env, "S.l")
		if err != nil {
			return err
		}
		env.Push(ir.Number(float64(len(s))))
		return nil
	}
	c[ir.BuiltinStrIndex] = func(env Env) error {
		vals, err := popN(env, 2)
		if err != nil {
			return err
		}
		s, i, err := asStringNumber(vals, "S.i")
		if err != nil {
			return err
		}
		idx := int(i)
		if idx < 0 || idx >= len(s) {
			env.Push(ir.StrS(""))
			return nil
		}
		env.Push(ir.Str([]byte{s[idx]}))
		return nil
	}
	c[ir.BuiltinStrReplace] = func(env Env) error {
		// Pops String, Num, String (deepest first): original, index, replacement.
		vals, err := popN(env, 3)
		if err != nil {
			return err
		}
		orig, ok := asString(vals[0])
		if !ok {
			return errWrongType("S.si", "string", vals[0].TypeName())
		}
		if vals[1].Kind != ir.KindNumber {
			return errWrongType("S.si", "number", vals[1].TypeName())
		}
		idx := int(vals[1].Num)
		repl, ok := asString(vals[2])
		if !ok {
			return errWrongType("S.si", "string", vals[2].TypeName())
		}
		if idx < 0 || idx >= len(orig) {
			return errWrongType("S.si", "in-range index", "out-of-range index")
		}
		if len(repl) != 1 {
			return errWrongType("S.si", "single-byte replacement", "multi-byte string")
		}
		out := make([]byte, len(orig))
		copy(out, orig)
		out[idx] = repl[0]
		env.Push(ir.Str(out))
		return nil
	}
	c[ir.BuiltinStrConcat] = func(env Env) error {
		// Concatenation in stack order, deeper first.
		vals, err := popN(env, 2)
		if err != nil {
			return err
		}
		a, ok := asString(vals[0])
		if !ok {
			return errWrongType("S.a", "string", vals[0].TypeName())
		}
		b, ok := asString(vals[1])
		if !ok {
			return errWrongType("S.a", "string", vals[1].TypeName())
		}
		out := make([]byte, 0, len(a)+len(b))
		out = append(out, a...)
		out = append(out, b...)
		env.Push(ir.Str(out))
		return nil
	}
	c[ir.BuiltinStrSplit] = func(env Env) error {
		vals, err := popN(env, 2)
		if err != nil {
			return err
		}
		s, i, err := asStringNumber(vals, "S.d")
		if err != nil {
			return err
		}
		idx := int(i)
		if idx < 0 {
			idx = 0
		}
		if idx > len(s) {
			idx = len(s)
		}
		env.Push(ir.Str(append([]byte{}, s[:idx]...)))
		env.Push(ir.Str(append([]byte{}, s[idx:]...)))
		return nil
	}
	c[ir.BuiltinStrEqual] = func(env Env) error {
		vals, err := popN(env, 2)
		if err != nil {
			return err
		}
		a, ok := asString(vals[0])
		if !ok {
			return errWrongType("S.e", "string", vals[0].TypeName())
		}
		b, ok := asString(vals[1])
		if !ok {
			return errWrongType("S.e", "string", vals[1].TypeName())
		}
		if string(a) == string(b) {
			env.Push(ir.Number(1))
		} else {
			env.Push(ir.Number(0))
		}
		return nil
	}
	c[ir.BuiltinStrNumToChar] = func(env Env) error {
		n, err := popNumber(env, "S.ns")
		if err != nil {
			return err
		}
		env.Push(ir.Str([]byte{byte(int(n))}))
		return nil
	}
	c[ir.BuiltinStrCharToNum] = func(env Env) error {
		s, err := popString(env, "S.sn")
		if err != nil {
			return err
		}
		if len(s) != 1 {
			return errWrongType("S.sn", "single-byte string", "string of a different length")
		}
		env.Push(ir.Number(float64(s[0])))
		return nil
	}
}

func asString(v ir.Value) ([]byte, bool) {
	if v.Kind != ir.KindString {
		return nil, false
	}
	return v.Str, true
}

func asStringNumber(vals []ir.Value, builtin string) ([]byte, float64, error) {
	s, ok := asString(vals[0])
	if !ok {
		return nil, 0, errWrongType(builtin, "string", vals[0].TypeName())
	}
	if vals[1].Kind != ir.KindNumber {
		return nil, 0, errWrongType(builtin, "number", vals[1].TypeName())
	}
	return s, vals[1].Num, nil
}
