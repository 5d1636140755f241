package builtins

import "fmt"

func errNoSuchBuiltin(id interface{}) error {
	return fmt.Errorf("no such builtin: %v", id)
}

func errWrongType(builtin, want, got string) error {
	return fmt.Errorf("%s: expected %s, got %s", builtin, want, got)
}

func errArity(builtin string) error {
	return fmt.Errorf("%s: not enough values on the stack", builtin)
}
