package builtins

import (
	"strings"

	"glass/internal/ir"
)

// Classes synthesizes the five built-in classes (A, I, O, S, V) as ordinary
// ir.Class values, each method body a single OpBuiltinFunction instruction.
// Grounded directly on original_source/src/builtins.cpp's get_builtins(),
// which registers "O" with functions "o"/"on" mapping to single
// BuiltinFunction commands; we generalize that registration to all 27
// operations instead of just the two builtins.cpp happened to cover.
//
// Modeling built-ins this way means the interpreter's GetFunction/
// ExecuteFunc need no special case at all: a built-in is an Instance like
// any other, its class just happens to have one-instruction method bodies
// that the frame-execution loop dispatches through the catalog.
func Classes() map[string]*ir.Class {
	classes := make(map[string]*ir.Class, 5)
	for _, id := range ir.AllBuiltinIDs() {
		full := id.BuiltinName() // e.g. "A.a"
		className, methodName, ok := strings.Cut(full, ".")
		if !ok {
			continue
		}
		class, ok := classes[className]
		if !ok {
			class = ir.NewClass(className)
			classes[className] = class
		}
		class.Methods[methodName] = &ir.Method{
			Name:   methodName,
			Instrs: []ir.Instruction{{Op: ir.OpBuiltinFunction, Builtin: id}},
		}
	}
	return classes
}
