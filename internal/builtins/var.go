package builtins

import "glass/internal/ir"

// registerVar wires the V class (spec.md §4.5).
func registerVar(c Catalog) {
	c[ir.BuiltinVarNew] = func(env Env) error {
		env.Push(env.NewDynamicName())
		return nil
	}
	c[ir.BuiltinVarDelete] = func(env Env) error {
		v, err := env.Pop()
		if err != nil {
			return err
		}
		if v.Kind != ir.KindName {
			return errWrongType("V.d", "name", v.TypeName())
		}
		if !env.DeleteDynamic(v.Name) {
			return errWrongType("V.d", "a V.n-generated name", "a name that was never generated")
		}
		return nil
	}
}
