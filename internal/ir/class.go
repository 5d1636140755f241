package ir

// Method is a named, ordered opcode sequence belonging to a class.
type Method struct {
	Name   string
	Instrs []Instruction
}

// Class is an immutable-after-link record: a name, its declared parents
// (only meaningful until the inheritance linker runs, then cleared per
// spec.md §3's invariant), and its methods.
type Class struct {
	Name    string
	Parents []string
	Methods map[string]*Method
}

func NewClass(name string) *Class {
	return &Class{Name: name, Methods: make(map[string]*Method)}
}

// IsConstructor reports whether name is the class constructor method name.
func IsConstructor(name string) bool { return name == "c__" }

// Object is a mutable instance: a field map plus the class that produced
// it. Its identity for GC/equality purposes is the Handle that names its
// arena slot, not this struct's address.
type Object struct {
	Class  *Class
	Fields map[string]Value
}

func NewObject(class *Class) *Object {
	return &Object{Class: class, Fields: make(map[string]Value)}
}
