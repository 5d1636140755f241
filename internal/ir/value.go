// Package ir holds the data model the rest of the interpreter pipeline
// shares: tagged values, opcodes, classes, objects and method bodies.
// Grounded on the teacher's internal/bytecode package (Chunk/OpCode/
// DebugInfo), adapted from a packed byte stream to a structured instruction
// slice since Glass's opcodes carry typed operands (names, numbers, jump
// indices) rather than a byte-addressable constant pool.
package ir

import "fmt"

// Scope classifies where a Name resolves, decided once from the name's
// first byte (spec.md §3) rather than re-inspected on every access.
type Scope int

const (
	ScopeLocal Scope = iota
	ScopeField
	ScopeGlobal
	ScopeDynamic
)

func (s Scope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeField:
		return "field"
	case ScopeGlobal:
		return "global"
	case ScopeDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ClassifyScope implements spec.md §4.6: underscore => local, lowercase =>
// field, otherwise (uppercase) => global.
func ClassifyScope(name string) Scope {
	if len(name) == 0 {
		return ScopeGlobal
	}
	switch {
	case name[0] == '_':
		return ScopeLocal
	case name[0] >= 'a' && name[0] <= 'z':
		return ScopeField
	default:
		return ScopeGlobal
	}
}

// Kind is the tag of a Value's active field.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindName
	KindInstance
	KindFunction
)

// Handle is a stable, relocation-proof reference into the object arena
// (SPEC_FULL.md §3, Design Note 1: stable indices instead of rewritten
// pointers).
type Handle struct {
	Index uint32
	Gen   uint32
}

// FuncRef is a bound method handle: an owning object plus a method name.
type FuncRef struct {
	Obj    Handle
	Method string
}

// Value is Glass's tagged union of runtime values. Copied by value; Inst
// and Fn carry handles, not owned storage.
type Value struct {
	Kind Kind

	Num   float64
	Str   []byte
	Name  string
	Scope Scope // only meaningful when Kind == KindName
	Inst  Handle
	Fn    FuncRef
}

func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func Str(s []byte) Value     { return Value{Kind: KindString, Str: s} }
func StrS(s string) Value    { return Value{Kind: KindString, Str: []byte(s)} }

// Name builds a Name value, classifying its scope from its spelling. Used
// for names known at parse time (PushName literals).
func Name(name string) Value {
	return Value{Kind: KindName, Name: name, Scope: ClassifyScope(name)}
}

// DynamicName builds a Name value for a V.n-generated dynamic variable: it
// lives in the global namespace but is tagged so V.d can recognize it.
func DynamicName(name string) Value {
	return Value{Kind: KindName, Name: name, Scope: ScopeDynamic}
}

func Instance(h Handle) Value { return Value{Kind: KindInstance, Inst: h} }
func Function(f FuncRef) Value {
	return Value{Kind: KindFunction, Fn: f}
}

// Truthy implements spec.md §4.2's truthiness table: nonzero Number or
// nonempty String is true; Name/Instance/Function are always false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0
	case KindString:
		return len(v.Str) > 0
	default:
		return false
	}
}

func (v Value) TypeName() string {
	switch v.Kind {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindInstance:
		return "instance"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindString:
		return string(v.Str)
	case KindName:
		return "@" + v.Name
	case KindInstance:
		return fmt.Sprintf("<instance %d>", v.Inst.Index)
	case KindFunction:
		return fmt.Sprintf("<function %s on %d>", v.Fn.Method, v.Fn.Obj.Index)
	default:
		return "<?>"
	}
}
