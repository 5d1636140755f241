// Package linker resolves single inheritance between parsed classes,
// splicing parent methods and constructor calls into their children.
// Grounded directly on original_source/src/class.cpp's check_inheritance
// (cycle/undefined-parent DFS) and Class::handle_inheritance (method and
// constructor splicing).
package linker

import (
	"github.com/google/uuid"

	"glass/internal/diag"
	"glass/internal/ir"
)

const constructorName = "c__"
const selfTempName = "_t"

type state int

const (
	unvisited state = iota
	processing
	processed
)

// Link mutates classes in place: every class ends up with its parents'
// non-constructor methods copied in (child wins on name clashes), its
// constructor prefixed with a call to each parent's constructor (nearest
// ancestor runs last, immediately before the class's own constructor
// body), and its Parents slice cleared once processing is done.
func Link(classes map[string]*ir.Class) error {
	states := make(map[string]state, len(classes))
	for name := range classes {
		if states[name] == unvisited {
			if err := checkCycle(classes, states, name, diag.Position{}); err != nil {
				return err
			}
		}
	}

	linked := make(map[string]bool, len(classes))
	for name := range classes {
		if err := handleInheritance(classes, linked, name); err != nil {
			return err
		}
	}
	return nil
}

func checkCycle(classes map[string]*ir.Class, states map[string]state, name string, at diag.Position) error {
	class, ok := classes[name]
	if !ok {
		return diag.NewLinkError(at, "class %s does not exist", name)
	}
	states[name] = processing
	for _, parent := range class.Parents {
		switch states[parent] {
		case processing:
			return diag.NewLinkError(at, "inheritance cycle detected involving class %s", parent)
		case unvisited:
			if err := checkCycle(classes, states, parent, at); err != nil {
				return err
			}
		}
	}
	states[name] = processed
	return nil
}

// handleInheritance links name's parents first (so a multi-level chain is
// fully resolved bottom-up before name copies from them), then splices.
func handleInheritance(classes map[string]*ir.Class, linked map[string]bool, name string) error {
	if linked[name] {
		return nil
	}
	linked[name] = true

	class := classes[name]
	if len(class.Parents) == 0 {
		return nil
	}
	for _, parent := range class.Parents {
		if err := handleInheritance(classes, linked, parent); err != nil {
			return err
		}
	}

	existingNames := collectMethodNames(classes)

	for _, parentName := range class.Parents {
		parent := classes[parentName]
		for methodName, method := range parent.Methods {
			if methodName == constructorName {
				continue
			}
			if _, has := class.Methods[methodName]; !has {
				class.Methods[methodName] = method
			}
		}

		parentCtor, hasCtor := parent.Methods[constructorName]
		if !hasCtor {
			continue
		}
		synthName := freshConstructorName(parentName, existingNames)
		existingNames[synthName] = true
		class.Methods[synthName] = parentCtor

		ctor := class.Methods[constructorName]
		if ctor == nil {
			ctor = &ir.Method{Name: constructorName}
		}
		ensureSelfAssignPrefix(ctor)
		ctor.Instrs = insertAt(ctor.Instrs, 2, parentCallSequence(synthName))
		class.Methods[constructorName] = ctor
	}

	class.Parents = nil
	return nil
}

// ensureSelfAssignPrefix prepends "PushName _t; AssignSelf" unless it's
// already there, mirroring the original's exact prefix check (size >= 2,
// first op PushName "_t", second op AssignSelf) so repeated parent calls
// share one prefix.
func ensureSelfAssignPrefix(ctor *ir.Method) {
	if len(ctor.Instrs) >= 2 &&
		ctor.Instrs[0].Op == ir.OpPushName && ctor.Instrs[0].Name == selfTempName &&
		ctor.Instrs[1].Op == ir.OpAssignSelf {
		return
	}
	prefix := []ir.Instruction{
		{Op: ir.OpPushName, Name: selfTempName, Scope: ir.ScopeLocal},
		{Op: ir.OpAssignSelf},
	}
	ctor.Instrs = append(append([]ir.Instruction{}, prefix...), ctor.Instrs...)
}

// parentCallSequence builds "_t (ctorName) . ?" — push the saved self
// pointer, push the synthetic constructor's name, fetch it as a bound
// function, and execute it.
func parentCallSequence(ctorName string) []ir.Instruction {
	nameVal := ir.Name(ctorName)
	return []ir.Instruction{
		{Op: ir.OpPushName, Name: selfTempName, Scope: ir.ScopeLocal},
		{Op: ir.OpPushName, Name: nameVal.Name, Scope: nameVal.Scope},
		{Op: ir.OpGetFunction},
		{Op: ir.OpExecuteFunc},
	}
}

// insertAt splices seq into instrs at index i, inserting before whatever
// was previously inserted there; repeated calls at the same fixed index
// (one per parent, declared order) therefore end up in reverse-declared
// order, with the first-declared parent's call closest to the class's
// own constructor body, matching the original's ctor.insert(begin()+2,...)
// called once per parent in loop order.
func insertAt(instrs []ir.Instruction, i int, seq []ir.Instruction) []ir.Instruction {
	if i > len(instrs) {
		i = len(instrs)
	}
	out := make([]ir.Instruction, 0, len(instrs)+len(seq))
	out = append(out, instrs[:i]...)
	out = append(out, seq...)
	out = append(out, instrs[i:]...)
	return out
}

func collectMethodNames(classes map[string]*ir.Class) map[string]bool {
	names := make(map[string]bool)
	for _, class := range classes {
		for methodName := range class.Methods {
			names[methodName] = true
		}
	}
	return names
}

// freshConstructorName names the copy of a parent's constructor that gets
// spliced into a child under a non-colliding name. The original appends
// underscores until the name is free; we generate a uuid suffix instead
// (wiring google/uuid, per DESIGN.md) but keep the same defensive
// collision loop in case of an astronomically unlikely clash.
func freshConstructorName(parentName string, existing map[string]bool) string {
	name := constructorName + parentName + "_" + uuid.New().String()
	for existing[name] {
		name += "_"
	}
	return name
}
