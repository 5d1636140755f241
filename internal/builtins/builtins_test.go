package builtins

import (
	"bufio"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"glass/internal/ir"
)

type fakeEnv struct {
	stack    []ir.Value
	dynNext  int
	dynAlive map[string]bool
	in       *bufio.Reader
	out      *bufio.Writer
	outBuf   *strings.Builder
}

func newFakeEnv(stdin string) *fakeEnv {
	outBuf := &strings.Builder{}
	return &fakeEnv{
		dynAlive: make(map[string]bool),
		in:       bufio.NewReader(strings.NewReader(stdin)),
		out:      bufio.NewWriter(outBuf),
		outBuf:   outBuf,
	}
}

func (f *fakeEnv) Pop() (ir.Value, error) {
	if len(f.stack) == 0 {
		return ir.Value{}, errArity("test")
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

func (f *fakeEnv) Push(v ir.Value) { f.stack = append(f.stack, v) }

func (f *fakeEnv) NewDynamicName() ir.Value {
	name := strconv.Itoa(f.dynNext)
	f.dynNext++
	f.dynAlive[name] = true
	return ir.DynamicName(name)
}

func (f *fakeEnv) DeleteDynamic(name string) bool {
	if !f.dynAlive[name] {
		return false
	}
	delete(f.dynAlive, name)
	return true
}

func (f *fakeEnv) Stdin() *bufio.Reader  { return f.in }
func (f *fakeEnv) Stdout() *bufio.Writer { return f.out }

func TestMathSubtractIsReversed(t *testing.T) {
	c := New()
	env := newFakeEnv("")
	env.Push(ir.Number(2)) // x, deeper
	env.Push(ir.Number(3)) // y, top
	require.NoError(t, c.Run(ir.BuiltinMathSub, env))
	v, _ := env.Pop()
	require.Equal(t, 1.0, v.Num) // y - x = 3 - 2
}

func TestMathAddCommutative(t *testing.T) {
	c := New()
	env := newFakeEnv("")
	env.Push(ir.Number(2))
	env.Push(ir.Number(3))
	require.NoError(t, c.Run(ir.BuiltinMathAdd, env))
	v, _ := env.Pop()
	require.Equal(t, 5.0, v.Num)
}

func TestStringSplitAndConcatRoundtrip(t *testing.T) {
	c := New()
	env := newFakeEnv("")
	env.Push(ir.StrS("hello world"))
	env.Push(ir.Number(5))
	require.NoError(t, c.Run(ir.BuiltinStrSplit, env))
	second, _ := env.Pop()
	first, _ := env.Pop()
	require.Equal(t, "hello", string(first.Str))
	require.Equal(t, " world", string(second.Str))

	env.Push(first)
	env.Push(second)
	require.NoError(t, c.Run(ir.BuiltinStrConcat, env))
	whole, _ := env.Pop()
	require.Equal(t, "hello world", string(whole.Str))
}

func TestVarNewAndDelete(t *testing.T) {
	c := New()
	env := newFakeEnv("")
	require.NoError(t, c.Run(ir.BuiltinVarNew, env))
	v, _ := env.Pop()
	require.Equal(t, "0", v.Name)

	env.Push(v)
	require.NoError(t, c.Run(ir.BuiltinVarDelete, env))

	env.Push(ir.Name("X"))
	require.Error(t, c.Run(ir.BuiltinVarDelete, env))
}

func TestInputLineAppendsNewline(t *testing.T) {
	c := New()
	env := newFakeEnv("hi")
	require.NoError(t, c.Run(ir.BuiltinInputLine, env))
	v, _ := env.Pop()
	require.Equal(t, "hi\n", string(v.Str))
}
