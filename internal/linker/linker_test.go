package linker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"glass/internal/ir"
)

func newClass(name string, parents ...string) *ir.Class {
	c := ir.NewClass(name)
	c.Parents = parents
	return c
}

func TestLinkCopiesNonConstructorMethods(t *testing.T) {
	parent := newClass("Parent")
	parent.Methods["greet"] = &ir.Method{Name: "greet", Instrs: []ir.Instruction{{Op: ir.OpReturn}}}
	child := newClass("Child", "Parent")
	child.Methods["m"] = &ir.Method{Name: "m"}

	classes := map[string]*ir.Class{"Parent": parent, "Child": child}
	require.NoError(t, Link(classes))

	require.Contains(t, child.Methods, "greet")
	require.Empty(t, child.Parents)
}

func TestLinkChildMethodWinsOverParent(t *testing.T) {
	parent := newClass("Parent")
	parent.Methods["m"] = &ir.Method{Name: "m", Instrs: []ir.Instruction{{Op: ir.OpReturn}}}
	child := newClass("Child", "Parent")
	ownBody := []ir.Instruction{{Op: ir.OpPopStack}, {Op: ir.OpReturn}}
	child.Methods["m"] = &ir.Method{Name: "m", Instrs: ownBody}

	classes := map[string]*ir.Class{"Parent": parent, "Child": child}
	require.NoError(t, Link(classes))

	require.Equal(t, ownBody, child.Methods["m"].Instrs)
}

func TestLinkConstructorChainSplicesSelfAssignAndCall(t *testing.T) {
	parent := newClass("Parent")
	parent.Methods[constructorName] = &ir.Method{Name: constructorName, Instrs: []ir.Instruction{{Op: ir.OpReturn}}}
	child := newClass("Child", "Parent")
	child.Methods[constructorName] = &ir.Method{Name: constructorName, Instrs: []ir.Instruction{{Op: ir.OpReturn}}}

	classes := map[string]*ir.Class{"Parent": parent, "Child": child}
	require.NoError(t, Link(classes))

	ctor := child.Methods[constructorName]
	require.Equal(t, ir.OpPushName, ctor.Instrs[0].Op)
	require.Equal(t, selfTempName, ctor.Instrs[0].Name)
	require.Equal(t, ir.OpAssignSelf, ctor.Instrs[1].Op)
	require.Equal(t, ir.OpPushName, ctor.Instrs[2].Op)
	require.Equal(t, ir.OpPushName, ctor.Instrs[3].Op)
	require.Equal(t, ir.OpGetFunction, ctor.Instrs[4].Op)
	require.Equal(t, ir.OpExecuteFunc, ctor.Instrs[5].Op)
	// Original child body (just Return) still present at the end.
	require.Equal(t, ir.OpReturn, ctor.Instrs[len(ctor.Instrs)-1].Op)

	// A synthetic copy of the parent's constructor exists under a fresh name.
	found := false
	for name := range child.Methods {
		if name != constructorName && len(name) > len(constructorName) && name[:len(constructorName)] == constructorName {
			found = true
		}
	}
	require.True(t, found, "expected a synthesized parent constructor method")
}

func TestLinkMultiParentOrderFirstDeclaredRunsLastBeforeBody(t *testing.T) {
	p1 := newClass("P1")
	p1.Methods[constructorName] = &ir.Method{Name: constructorName}
	p2 := newClass("P2")
	p2.Methods[constructorName] = &ir.Method{Name: constructorName}
	child := newClass("Child", "P1", "P2")
	child.Methods[constructorName] = &ir.Method{Name: constructorName}

	classes := map[string]*ir.Class{"P1": p1, "P2": p2, "Child": child}
	require.NoError(t, Link(classes))

	ctor := child.Methods[constructorName]
	// Instrs: prefix(2), call-to-P2-ctor(4), call-to-P1-ctor(4).
	require.Len(t, ctor.Instrs, 10)
	firstCallName := ctor.Instrs[3].Name
	secondCallName := ctor.Instrs[7].Name
	require.Contains(t, firstCallName, "P2")
	require.Contains(t, secondCallName, "P1")
}

func TestLinkDetectsCycle(t *testing.T) {
	a := newClass("A", "B")
	b := newClass("B", "A")
	classes := map[string]*ir.Class{"A": a, "B": b}
	require.Error(t, Link(classes))
}

func TestLinkDetectsUndefinedParent(t *testing.T) {
	a := newClass("A", "Ghost")
	classes := map[string]*ir.Class{"A": a}
	require.Error(t, Link(classes))
}

func TestLinkMultiLevelChainInheritsTransitively(t *testing.T) {
	grandparent := newClass("GP")
	grandparent.Methods["base"] = &ir.Method{Name: "base"}
	parent := newClass("P", "GP")
	child := newClass("C", "P")

	classes := map[string]*ir.Class{"GP": grandparent, "P": parent, "C": child}
	require.NoError(t, Link(classes))

	require.Contains(t, parent.Methods, "base")
	require.Contains(t, child.Methods, "base")
}
