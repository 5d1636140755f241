package lexreader

import "testing"

import "github.com/stretchr/testify/require"

func TestNextAndPosition(t *testing.T) {
	r := NewFromBytes("t.gl", []byte("ab\nc"))

	b, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, byte('a'), b)
	require.Equal(t, 1, r.Pos().Line)
	require.Equal(t, 1, r.Pos().Column)

	b, ok = r.Next()
	require.True(t, ok)
	require.Equal(t, byte('b'), b)
	require.Equal(t, 2, r.Pos().Column)

	b, ok = r.Next()
	require.True(t, ok)
	require.Equal(t, byte('\n'), b)

	b, ok = r.Next()
	require.True(t, ok)
	require.Equal(t, byte('c'), b)
	require.Equal(t, 2, r.Pos().Line)
	require.Equal(t, 1, r.Pos().Column)

	_, ok = r.Next()
	require.False(t, ok)
}

func TestPushback(t *testing.T) {
	r := NewFromBytes("t.gl", []byte("xy"))

	b, _ := r.Next()
	require.Equal(t, byte('x'), b)
	r.Pushback(b)

	b, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, byte('x'), b)

	b, _ = r.Next()
	require.Equal(t, byte('y'), b)
}

func TestPushbackTwiceInARowPanics(t *testing.T) {
	r := NewFromBytes("t.gl", []byte("x"))
	b, _ := r.Next()
	r.Pushback(b)
	require.Panics(t, func() { r.Pushback(b) })
}

func TestCommentsAreTransparent(t *testing.T) {
	r := NewFromBytes("t.gl", []byte("a'this is a comment'b"))
	b, _ := r.Next()
	require.Equal(t, byte('a'), b)
	b, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, byte('b'), b)
}

func TestUnterminatedComment(t *testing.T) {
	r := NewFromBytes("t.gl", []byte("a'oops"))
	_, _ = r.Next()
	_, ok := r.Next()
	require.False(t, ok)
	err := r.CommentErr()
	require.Error(t, err)
}
