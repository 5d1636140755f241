package builtins

import (
	"io"

	"glass/internal/ir"
)

// registerInput wires the I class (spec.md §4.5).
func registerInput(c Catalog) {
	c[ir.BuiltinInputLine] = func(env Env) error {
		line, err := env.Stdin().ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) == 0 || line[len(line)-1] != '\n' {
			// Open Question 3 (DESIGN.md): always append the trailing
			// newline, matching the spec's stated final behavior.
			line += "\n"
		}
		env.Push(ir.StrS(line))
		return nil
	}
	c[ir.BuiltinInputChar] = func(env Env) error {
		b, err := env.Stdin().ReadByte()
		if err != nil {
			if err == io.EOF {
				env.Push(ir.StrS(""))
				return nil
			}
			return err
		}
		env.Push(ir.Str([]byte{b}))
		return nil
	}
	c[ir.BuiltinInputEof] = func(env Env) error {
		_, err := env.Stdin().Peek(1)
		if err == io.EOF {
			env.Push(ir.Number(1))
		} else {
			env.Push(ir.Number(0))
		}
		return nil
	}
}
