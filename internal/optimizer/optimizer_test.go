package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"glass/internal/ir"
)

func TestOptimizeFusesFuncCall(t *testing.T) {
	m := &ir.Method{Instrs: []ir.Instruction{
		{Op: ir.OpPushName, Name: "x", Scope: ir.ScopeField},
		{Op: ir.OpPushName, Name: "run", Scope: ir.ScopeField},
		{Op: ir.OpGetFunction},
		{Op: ir.OpExecuteFunc},
		{Op: ir.OpReturn},
	}}
	Optimize(m)
	require.Len(t, m.Instrs, 2)
	require.Equal(t, ir.OpFuncCall, m.Instrs[0].Op)
	require.Equal(t, "x", m.Instrs[0].Name)
	require.Equal(t, "run", m.Instrs[0].Name2)
	require.Equal(t, ir.OpReturn, m.Instrs[1].Op)
}

func TestOptimizeFusesNewInst(t *testing.T) {
	m := &ir.Method{Instrs: []ir.Instruction{
		{Op: ir.OpPushName, Name: "obj", Scope: ir.ScopeField},
		{Op: ir.OpPushName, Name: "Widget", Scope: ir.ScopeGlobal},
		{Op: ir.OpAssignClass},
	}}
	Optimize(m)
	require.Len(t, m.Instrs, 1)
	require.Equal(t, ir.OpNewInst, m.Instrs[0].Op)
	require.Equal(t, "obj", m.Instrs[0].Name)
	require.Equal(t, "Widget", m.Instrs[0].Name2)
}

func TestOptimizeFusesAssignTo(t *testing.T) {
	m := &ir.Method{Instrs: []ir.Instruction{
		{Op: ir.OpPushName, Name: "n", Scope: ir.ScopeField},
		{Op: ir.OpDupElement, Index: 1},
		{Op: ir.OpAssignValue},
		{Op: ir.OpPopStack},
	}}
	Optimize(m)
	require.Len(t, m.Instrs, 1)
	require.Equal(t, ir.OpAssignTo, m.Instrs[0].Op)
	require.Equal(t, "n", m.Instrs[0].Name)
}

func TestOptimizeLeavesUnmatchedDupElementAlone(t *testing.T) {
	m := &ir.Method{Instrs: []ir.Instruction{
		{Op: ir.OpPushName, Name: "n", Scope: ir.ScopeField},
		{Op: ir.OpDupElement, Index: 2},
		{Op: ir.OpAssignValue},
		{Op: ir.OpPopStack},
	}}
	Optimize(m)
	require.Len(t, m.Instrs, 4)
	require.Equal(t, ir.OpPushName, m.Instrs[0].Op)
}

func TestOptimizeRecomputesLoopJumpIndicesAfterFusion(t *testing.T) {
	// /n obj.run? \ ^   (loop body fuses to one instruction, shrinking it)
	m := &ir.Method{Instrs: []ir.Instruction{
		{Op: ir.OpLoopBegin, Name: "n", Index: 5},
		{Op: ir.OpPushName, Name: "obj", Scope: ir.ScopeField},
		{Op: ir.OpPushName, Name: "run", Scope: ir.ScopeField},
		{Op: ir.OpGetFunction},
		{Op: ir.OpExecuteFunc},
		{Op: ir.OpLoopEnd, Name: "n", Index: 0},
		{Op: ir.OpReturn},
	}}
	Optimize(m)
	require.Len(t, m.Instrs, 4) // LoopBegin, FuncCall, LoopEnd, Return
	begin := m.Instrs[0]
	var endIdx int
	for i, in := range m.Instrs {
		if in.Op == ir.OpLoopEnd {
			endIdx = i
		}
	}
	require.Equal(t, endIdx, begin.Index)
	require.Equal(t, 0, m.Instrs[endIdx].Index)
}
