// Package interp is the tree-walking interpreter: a frame stack plus a
// fetch-decode-execute loop over one method's instruction slice, with
// LoopBegin/LoopEnd as the only branches (spec.md §4.8). Grounded on the
// teacher's internal/vm.EnhancedVM fetch-decode-execute loop
// (internal/vm/vm_enhanced.go), generalized from its array-indexed
// bytecode.Chunk to Glass's per-method []ir.Instruction, and from its
// array-backed globals to Glass's three name-scoped maps (spec.md §4.6).
package interp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"glass/internal/arena"
	"glass/internal/builtins"
	"glass/internal/diag"
	"glass/internal/ir"
)

// frame is the per-invocation record of spec.md §3: locals, the executing
// object, and the method name (kept for diagnostics).
type frame struct {
	this   ir.Handle
	locals map[string]ir.Value
	method string
}

// Interpreter owns every piece of mutable runtime state named in spec.md
// §3's "Runtime state": the operand stack, the three scoped namespaces,
// the object arena, and the live frame stack. Bundling it in a struct
// (rather than the reference implementation's module-scope globals) is
// Design Note "Global singletons": tests can build more than one
// Interpreter in the same process.
type Interpreter struct {
	classes map[string]*ir.Class
	catalog builtins.Catalog
	arena   *arena.Arena

	globals map[string]ir.Value
	stack   []ir.Value
	frames  []*frame

	dynamicNames map[string]bool
	nextDynamic  uint64

	stdinR  *bufio.Reader
	stdoutW *bufio.Writer

	// Verbose, when set, has the arena log GC activity through Log.
	Verbose bool
	Log     func(string)
}

// New builds an interpreter over classes (already parsed and, ordinarily,
// linked and optimized), merging in the five built-in classes. It is an
// error for a source program to declare a class under a built-in's name.
func New(classes map[string]*ir.Class, stdin io.Reader, stdout io.Writer) (*Interpreter, error) {
	merged := make(map[string]*ir.Class, len(classes)+5)
	for name, class := range classes {
		merged[name] = class
	}
	for name, class := range builtins.Classes() {
		if _, exists := merged[name]; exists {
			return nil, fmt.Errorf("class %q collides with the built-in class of the same name", name)
		}
		merged[name] = class
	}

	in := &Interpreter{
		classes:      merged,
		catalog:      builtins.New(),
		arena:        arena.New(),
		globals:      make(map[string]ir.Value),
		dynamicNames: make(map[string]bool),
		stdinR:       bufio.NewReader(stdin),
		stdoutW:      bufio.NewWriter(stdout),
		Log:          func(string) {},
	}
	return in, nil
}

// Run bootstraps `_Main` as a fresh instance of class M (spec.md §4.8):
// runs M's c__ if present, then invokes m. Returns nil on normal
// completion; a *diag.GlassError (the caller maps that to exit code 1)
// on any fatal error.
func (in *Interpreter) Run() error {
	defer in.stdoutW.Flush()
	in.arena.Verbose = in.Verbose
	in.arena.Log = in.Log

	mainClass, ok := in.classes["M"]
	if !ok {
		return diag.NewRuntimeError(diag.Position{}, "no class named M is defined")
	}
	// One singleton instance per built-in class, bound to the global of
	// the same name, so that e.g. `Oo.?` has an instance to call on.
	for _, name := range []string{"A", "I", "O", "S", "V"} {
		h, err := in.allocInstance(in.classes[name])
		if err != nil {
			return err
		}
		in.globals[name] = ir.Instance(h)
	}
	handle := in.arena.Alloc(mainClass, in.roots)
	in.globals["_Main"] = ir.Instance(handle)

	if ctor, ok := mainClass.Methods["c__"]; ok {
		if err := in.executeMethod(ctor, handle); err != nil {
			return err
		}
	}
	m, ok := mainClass.Methods["m"]
	if !ok {
		return diag.NewRuntimeError(diag.Position{}, "class M has no method named m")
	}
	return in.executeMethod(m, handle)
}

// roots implements arena.RootsFunc: every Instance/Function-typed value
// reachable from the stack, globals, and each live frame's locals and
// this (spec.md §4.7 step 1).
func (in *Interpreter) roots() []ir.Value {
	var out []ir.Value
	out = append(out, in.stack...)
	for _, v := range in.globals {
		out = append(out, v)
	}
	for _, f := range in.frames {
		out = append(out, ir.Instance(f.this))
		for _, v := range f.locals {
			out = append(out, v)
		}
	}
	return out
}

// allocInstance creates a new instance of class, running its c__
// constructor immediately if it has one (spec.md §3's Instance lifecycle).
func (in *Interpreter) allocInstance(class *ir.Class) (ir.Handle, error) {
	h := in.arena.Alloc(class, in.roots)
	if ctor, ok := class.Methods["c__"]; ok {
		if err := in.executeMethod(ctor, h); err != nil {
			return h, err
		}
	}
	return h, nil
}

// executeMethod pushes a frame, runs method's instructions to completion
// (Return or falling off the end), and pops the frame.
func (in *Interpreter) executeMethod(method *ir.Method, this ir.Handle) error {
	f := &frame{this: this, locals: make(map[string]ir.Value), method: method.Name}
	in.frames = append(in.frames, f)
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	pc := 0
	for pc < len(method.Instrs) {
		instr := method.Instrs[pc]
		next, stop, err := in.exec(instr, f, pc)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		pc = next
	}
	return nil
}

// exec runs one instruction, returning the next instruction pointer, or
// stop=true if Return (or its equivalent) ended the frame.
func (in *Interpreter) exec(instr ir.Instruction, f *frame, pc int) (int, bool, error) {
	var stepErr error

	switch instr.Op {
	case ir.OpPushName:
		in.push(ir.Value{Kind: ir.KindName, Name: instr.Name, Scope: instr.Scope})

	case ir.OpPushNumber:
		in.push(ir.Number(instr.Num))

	case ir.OpPushString:
		in.push(ir.Str(instr.Str))

	case ir.OpDupElement:
		stepErr = in.dup(instr.Index)

	case ir.OpPopStack:
		_, stepErr = in.pop()

	case ir.OpReturn:
		return 0, true, nil

	case ir.OpAssignSelf:
		stepErr = in.assignSelf(f)

	case ir.OpAssignValue:
		stepErr = in.assignValue(f)

	case ir.OpAssignClass:
		stepErr = in.assignClass(f)

	case ir.OpGetValue:
		stepErr = in.getValueOp(f)

	case ir.OpGetFunction:
		stepErr = in.getFunctionOp(f)

	case ir.OpExecuteFunc:
		stepErr = in.executeFuncOp()

	case ir.OpLoopBegin:
		val, err := in.lookup(instr.Name, instr.Scope, f)
		if err != nil {
			return 0, false, diag.NewRuntimeError(instr.Pos, "loop variable %q is undefined: %s", instr.Name, err)
		}
		if !val.Truthy() {
			return instr.Index + 1, false, nil
		}
		return pc + 1, false, nil

	case ir.OpLoopEnd:
		val, err := in.lookup(instr.Name, instr.Scope, f)
		if err != nil {
			return 0, false, diag.NewRuntimeError(instr.Pos, "loop variable %q is undefined: %s", instr.Name, err)
		}
		if val.Truthy() {
			return instr.Index + 1, false, nil
		}
		return pc + 1, false, nil

	case ir.OpBuiltinFunction:
		if err := in.catalog.Run(instr.Builtin, in); err != nil {
			stepErr = err
		}

	case ir.OpFuncCall:
		stepErr = in.funcCall(instr, f)

	case ir.OpNewInst:
		stepErr = in.newInst(instr, f)

	case ir.OpAssignTo:
		v, err := in.pop()
		if err != nil {
			stepErr = err
		} else {
			in.setVal(instr.Name, instr.Scope, v, f)
		}

	case ir.OpNop:
		// removed after optimization; a stray Nop reaching the
		// interpreter (--no-opt) is simply skipped.

	default:
		stepErr = fmt.Errorf("unhandled opcode %s", instr.Op)
	}

	if stepErr != nil {
		return 0, false, diag.NewRuntimeError(instr.Pos, "%s", stepErr)
	}
	return pc + 1, false, nil
}

func (in *Interpreter) push(v ir.Value) { in.stack = append(in.stack, v) }

func (in *Interpreter) pop() (ir.Value, error) {
	if len(in.stack) == 0 {
		return ir.Value{}, fmt.Errorf("attempted to pop an empty stack")
	}
	v := in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	return v, nil
}

func (in *Interpreter) dup(k int) error {
	if k < 0 || k >= len(in.stack) {
		return fmt.Errorf("attempted to duplicate out-of-range stack element %d", k)
	}
	in.push(in.stack[len(in.stack)-1-k])
	return nil
}

// lookup resolves a Name's current value per spec.md §4.6. Reads of an
// undefined name are a fatal runtime error.
func (in *Interpreter) lookup(name string, scope ir.Scope, f *frame) (ir.Value, error) {
	switch scope {
	case ir.ScopeLocal:
		v, ok := f.locals[name]
		if !ok {
			return ir.Value{}, fmt.Errorf("%q is not defined", name)
		}
		return v, nil
	case ir.ScopeField:
		obj, ok := in.arena.Get(f.this)
		if !ok {
			return ir.Value{}, fmt.Errorf("current object no longer exists")
		}
		v, ok := obj.Fields[name]
		if !ok {
			return ir.Value{}, fmt.Errorf("%q is not defined", name)
		}
		return v, nil
	default: // ScopeGlobal, ScopeDynamic
		v, ok := in.globals[name]
		if !ok {
			return ir.Value{}, fmt.Errorf("%q is not defined", name)
		}
		return v, nil
	}
}

// setVal writes name := v, creating the binding if absent (spec.md §4.6).
func (in *Interpreter) setVal(name string, scope ir.Scope, v ir.Value, f *frame) {
	switch scope {
	case ir.ScopeLocal:
		f.locals[name] = v
	case ir.ScopeField:
		if obj, ok := in.arena.Get(f.this); ok {
			obj.Fields[name] = v
		}
	default:
		in.globals[name] = v
	}
}

func (in *Interpreter) assignSelf(f *frame) error {
	n, err := in.pop()
	if err != nil {
		return err
	}
	if n.Kind != ir.KindName {
		return fmt.Errorf("cannot assign to a non-name value")
	}
	in.setVal(n.Name, n.Scope, ir.Instance(f.this), f)
	return nil
}

func (in *Interpreter) assignValue(f *frame) error {
	v, err := in.pop()
	if err != nil {
		return err
	}
	n, err := in.pop()
	if err != nil {
		return err
	}
	if n.Kind != ir.KindName {
		return fmt.Errorf("cannot assign to a non-name value")
	}
	in.setVal(n.Name, n.Scope, v, f)
	return nil
}

// assignClass implements AssignClass (spec.md §4.2): pop the class name,
// pop the target name, construct an instance, run c__ if present, store.
func (in *Interpreter) assignClass(f *frame) error {
	cname, err := in.pop()
	if err != nil {
		return err
	}
	n, err := in.pop()
	if err != nil {
		return err
	}
	if n.Kind != ir.KindName {
		return fmt.Errorf("cannot assign to a non-name value")
	}
	if cname.Kind != ir.KindName {
		return fmt.Errorf("cannot instantiate a non-name value as a class")
	}
	class, ok := in.classes[cname.Name]
	if !ok {
		return fmt.Errorf("class %q does not exist", cname.Name)
	}
	h, err := in.allocInstance(class)
	if err != nil {
		return err
	}
	in.setVal(n.Name, n.Scope, ir.Instance(h), f)
	return nil
}

func (in *Interpreter) newInst(instr ir.Instruction, f *frame) error {
	class, ok := in.classes[instr.Name2]
	if !ok {
		return fmt.Errorf("class %q does not exist", instr.Name2)
	}
	h, err := in.allocInstance(class)
	if err != nil {
		return err
	}
	in.setVal(instr.Name, instr.Scope, ir.Instance(h), f)
	return nil
}

func (in *Interpreter) getValueOp(f *frame) error {
	n, err := in.pop()
	if err != nil {
		return err
	}
	if n.Kind != ir.KindName {
		return fmt.Errorf("cannot retrieve the value of a non-name value")
	}
	v, err := in.lookup(n.Name, n.Scope, f)
	if err != nil {
		return err
	}
	in.push(v)
	return nil
}

// getFunctionOp implements GetFunction: pop the method name (used
// literally, never scope-resolved), pop the object name (resolved to a
// value that must be an Instance), push an unvalidated FuncRef. Whether
// the method actually exists is discovered at ExecuteFunc time, matching
// the reference implementation (original_source/src/function.cpp) which
// stores the method name as plain text in the Function it builds.
func (in *Interpreter) getFunctionOp(f *frame) error {
	fname, err := in.pop()
	if err != nil {
		return err
	}
	oname, err := in.pop()
	if err != nil {
		return err
	}
	if fname.Kind != ir.KindName || oname.Kind != ir.KindName {
		return fmt.Errorf("cannot retrieve a function using a non-name value")
	}
	ov, err := in.lookup(oname.Name, oname.Scope, f)
	if err != nil {
		return err
	}
	if ov.Kind != ir.KindInstance {
		return fmt.Errorf("cannot retrieve a function from a non-instance value")
	}
	in.push(ir.Function(ir.FuncRef{Obj: ov.Inst, Method: fname.Name}))
	return nil
}

func (in *Interpreter) executeFuncOp() error {
	fn, err := in.pop()
	if err != nil {
		return err
	}
	if fn.Kind != ir.KindFunction {
		return fmt.Errorf("attempted to call a non-function value")
	}
	return in.invoke(fn.Fn)
}

// funcCall implements the fused FuncCall(object, method): the object name
// is resolved via lookup, the method name is used literally, exactly like
// GetFunction+ExecuteFunc but without the intermediate Function value.
func (in *Interpreter) funcCall(instr ir.Instruction, f *frame) error {
	ov, err := in.lookup(instr.Name, instr.Scope, f)
	if err != nil {
		return err
	}
	if ov.Kind != ir.KindInstance {
		return fmt.Errorf("cannot retrieve a function from a non-instance value")
	}
	return in.invoke(ir.FuncRef{Obj: ov.Inst, Method: instr.Name2})
}

func (in *Interpreter) invoke(fn ir.FuncRef) error {
	obj, ok := in.arena.Get(fn.Obj)
	if !ok {
		return fmt.Errorf("the object this function was bound to no longer exists")
	}
	method, ok := obj.Class.Methods[fn.Method]
	if !ok {
		return fmt.Errorf("%q has no method named %q", obj.Class.Name, fn.Method)
	}
	return in.executeMethod(method, fn.Obj)
}

// --- builtins.Env ---

func (in *Interpreter) Pop() (ir.Value, error) { return in.pop() }
func (in *Interpreter) Push(v ir.Value)        { in.push(v) }

func (in *Interpreter) NewDynamicName() ir.Value {
	name := strconv.FormatUint(in.nextDynamic, 10)
	in.nextDynamic++
	in.dynamicNames[name] = true
	in.globals[name] = ir.Number(0)
	return ir.DynamicName(name)
}

func (in *Interpreter) DeleteDynamic(name string) bool {
	if !in.dynamicNames[name] {
		return false
	}
	delete(in.dynamicNames, name)
	delete(in.globals, name)
	return true
}

func (in *Interpreter) Stdin() *bufio.Reader  { return in.stdinR }
func (in *Interpreter) Stdout() *bufio.Writer { return in.stdoutW }
