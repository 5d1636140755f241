package builtins

import (
	"strconv"

	"glass/internal/ir"
)

// registerOutput wires the O class (spec.md §4.5).
func registerOutput(c Catalog) {
	c[ir.BuiltinOutputStr] = func(env Env) error {
		s, err := popString(env, "O.o")
		if err != nil {
			return err
		}
		_, err = env.Stdout().Write(s)
		return err
	}
	c[ir.BuiltinOutputNumber] = func(env Env) error {
		n, err := popNumber(env, "O.on")
		if err != nil {
			return err
		}
		// Open Question 2 (DESIGN.md): shortest round-trip decimal via
		// the host's default formatter, same choice as fmt.Println(float)
		// which the teacher's PrintValue (internal/vm/value.go) relies on.
		_, err = env.Stdout().WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		return err
	}
}
