package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/bigint"
	"quill/internal/diag"
)

func intObj(n int64) *Integer { return NewInteger(bigint.FromInt64(n)) }

func TestDeclareAndLookup(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.Declare("x", intObj(1), true))

	got, err := env.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, "1", Render(got))
}

func TestRedeclarationInSameFrame(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.Declare("x", intObj(1), false))

	err := env.Declare("x", intObj(2), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.Redeclaration))

	got, _ := env.Lookup("x")
	assert.Equal(t, "1", Render(got))
}

func TestShadowingLeavesOuterBinding(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.Declare("x", intObj(1), false))

	env.Push()
	require.NoError(t, env.Declare("x", NewText("inner"), true))
	got, _ := env.Lookup("x")
	assert.Equal(t, "inner", Render(got))
	require.NoError(t, env.Assign("x", NewText("changed")))
	env.Pop()

	got, err := env.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, "1", Render(got))
}

func TestUndefinedVariable(t *testing.T) {
	env := NewEnvironment()
	_, err := env.Lookup("missing")
	assert.True(t, errors.Is(err, diag.UndefinedVariable))

	err = env.Assign("missing", TRUE)
	assert.True(t, errors.Is(err, diag.UndefinedVariable))

	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "missing", de.Subject)
}

func TestImmutableAssignmentForEveryKind(t *testing.T) {
	for _, v := range []Object{intObj(5), NewText("s"), TRUE, FALSE} {
		env := NewEnvironment()
		require.NoError(t, env.Declare("c", intObj(1), false))
		err := env.Assign("c", v)
		assert.True(t, errors.Is(err, diag.ImmutableAssignment), "value %s", v.Inspect())

		got, _ := env.Lookup("c")
		assert.Equal(t, "1", Render(got))
	}
}

func TestAssignWritesOwningFrame(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.Declare("total", intObj(0), true))

	env.Push()
	env.Push()
	require.NoError(t, env.Assign("total", intObj(7)))
	got := env.Bindings()
	require.Len(t, got, 1, "assignment must not create a binding in the inner frame")
	assert.Equal(t, 0, got[0].Depth)
	env.Pop()
	env.Pop()

	v, _ := env.Lookup("total")
	assert.Equal(t, "7", Render(v))
}

func TestResolve(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.Declare("limit", intObj(10), false))
	env.Push()

	b, err := env.Resolve("limit")
	require.NoError(t, err)
	assert.False(t, b.Mutable)
	assert.Equal(t, "10", Render(b.Value))

	_, err = env.Resolve("missing")
	assert.True(t, errors.Is(err, diag.UndefinedVariable))
}

func TestPoppedFrameBindingsDisappear(t *testing.T) {
	env := NewEnvironment()
	env.Push()
	require.NoError(t, env.Declare("tmp", TRUE, true))
	assert.Equal(t, 2, env.Depth())
	env.Pop()

	assert.Equal(t, 1, env.Depth())
	_, err := env.Lookup("tmp")
	assert.True(t, errors.Is(err, diag.UndefinedVariable))
}

func TestPopGlobalFramePanics(t *testing.T) {
	env := NewEnvironment()
	assert.Panics(t, env.Pop)
}

func TestBindingsHidesShadowed(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.Declare("b", intObj(1), false))
	require.NoError(t, env.Declare("a", intObj(2), true))
	env.Push()
	require.NoError(t, env.Declare("b", NewText("inner"), true))

	got := env.Bindings()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, 0, got[0].Depth)
	assert.Equal(t, "b", got[1].Name)
	assert.Equal(t, 1, got[1].Depth)
	assert.True(t, got[1].Mutable)
	assert.Equal(t, "inner", Render(got[1].Value))
}
