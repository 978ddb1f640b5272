package unit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/inoxlang/quadc/internal/logs"
	"github.com/inoxlang/quadc/internal/quad"
	"github.com/inoxlang/quadc/internal/symbols"
	"github.com/inoxlang/quadc/internal/testconfig"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUnit(t *testing.T) *Unit {
	return New(Config{Name: "test", Logger: testconfig.Logger(t)})
}

func TestEndToEnd(t *testing.T) {
	testconfig.AllowParallelization(t)

	u := newTestUnit(t)

	a, err := u.DeclareVariable(symbols.Integer, "a", 1, 5, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "integer a[][]", a.String())

	_, err = u.Subscript("a", []int{1, 2})
	assert.NoError(t, err)

	_, err = u.Subscript("a", []int{2, 0})
	assert.ErrorIs(t, err, symbols.ErrInvalidSubscript)

	_, err = u.DeclareVariable(symbols.Integer, "x", 2, 5)
	require.NoError(t, err)

	for i, expected := range []quad.Address{1, 2, 3} {
		addr, err := u.Emit(quad.Assign, quad.Int(i), nil, quad.Sym("x"))
		require.NoError(t, err)
		assert.Equal(t, expected, addr)
	}

	require.NoError(t, u.Backpatch(1, quad.Jump, nil, nil, quad.Target(3)))

	var addresses []quad.Address
	for _, q := range u.Code().Records() {
		addresses = append(addresses, q.Address())
	}
	assert.Equal(t, []quad.Address{1, quad.NO_ADDRESS, 2, 3}, addresses)

	jump, _ := u.Code().Get(1)
	assert.Equal(t, quad.Jump, jump.Op)

	u.Reset()
	assert.Zero(t, u.Code().Size())
	assert.Zero(t, u.Symbols().Len())
}

func TestDeclarations(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("scalar", func(t *testing.T) {
		u := newTestUnit(t)
		c, err := u.DeclareVariable(symbols.Char, "c", 3, 1)
		require.NoError(t, err)
		assert.False(t, c.IsArray())
		assert.Equal(t, 1, c.ElementSize())

		found, ok := u.Symbols().Lookup("c")
		require.True(t, ok)
		assert.Same(t, c, found)
	})

	t.Run("array", func(t *testing.T) {
		u := newTestUnit(t)
		_, err := u.Declare(symbols.Real, "m", 1, 1)
		require.NoError(t, err)

		_, ok := u.Symbols().Lookup("m")
		assert.False(t, ok, "the symbol should not be registered before the end of the declaration")

		_, err = u.AddDimension(4)
		require.NoError(t, err)
		_, err = u.AddDimension(5)
		require.NoError(t, err)

		m, err := u.EndDeclaration()
		require.NoError(t, err)

		d, ok := m.ArrayDescriptor()
		require.True(t, ok)
		assert.True(t, d.IsFrozen())
		assert.Equal(t, "[4,5]", d.String())
		assert.Equal(t, 8, m.ElementSize())
		assert.Equal(t, 160, m.StorageSize())
	})

	t.Run("invalid extent", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		u := New(Config{Name: "test", Logger: zerolog.New(buf)})

		_, err := u.Declare(symbols.Integer, "a", 2, 9)
		require.NoError(t, err)
		stored, err := u.AddDimension(0)
		require.NoError(t, err)
		assert.Equal(t, 1, stored)

		a, err := u.EndDeclaration()
		require.NoError(t, err)
		d, _ := a.ArrayDescriptor()
		assert.Equal(t, []int{1}, d.Extents())

		diagnostics := u.Diagnostics()
		require.Len(t, diagnostics, 1)
		assert.Equal(t, Warning, diagnostics[0].Severity)
		assert.Equal(t, "a", diagnostics[0].Symbol)
		assert.Equal(t, "warning: 2:9: invalid size 0 for dimension 0 of array a, it is replaced by 1", diagnostics[0].String())
		assert.False(t, u.HasErrors())
		assert.NoError(t, u.Err())

		assert.Contains(t, buf.String(), `"symbol":"a"`)
		assert.Contains(t, buf.String(), "invalid array dimension size")
	})

	t.Run("redeclaration", func(t *testing.T) {
		u := newTestUnit(t)
		_, err := u.DeclareVariable(symbols.Integer, "a", 1, 1)
		require.NoError(t, err)

		_, err = u.DeclareVariable(symbols.Real, "a", 2, 1)
		assert.ErrorIs(t, err, symbols.ErrAlreadyDeclared)
		assert.True(t, u.HasErrors())

		a, _ := u.Symbols().Lookup("a")
		assert.Equal(t, symbols.Integer, a.Type)

		//a new declaration can start
		_, err = u.DeclareVariable(symbols.Real, "b", 3, 1)
		assert.NoError(t, err)
	})

	t.Run("declaration state errors", func(t *testing.T) {
		u := newTestUnit(t)

		_, err := u.AddDimension(2)
		assert.ErrorIs(t, err, ErrNoDeclaration)

		_, err = u.EndDeclaration()
		assert.ErrorIs(t, err, ErrNoDeclaration)

		_, err = u.Declare(symbols.Integer, "a", 1, 1)
		require.NoError(t, err)
		_, err = u.Declare(symbols.Integer, "b", 1, 1)
		assert.ErrorIs(t, err, ErrDeclarationInProgress)
	})
}

func TestSubscript(t *testing.T) {
	u := newTestUnit(t)
	_, err := u.DeclareVariable(symbols.Integer, "a", 1, 1, 3, 4)
	require.NoError(t, err)
	_, err = u.DeclareVariable(symbols.Integer, "n", 2, 1)
	require.NoError(t, err)

	a, err := u.Subscript("a", []int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, a.CurrentIndices())

	//an invalid subscript does not change the current indices
	_, err = u.Subscript("a", []int{1})
	assert.ErrorIs(t, err, symbols.ErrInvalidSubscript)
	assert.Equal(t, []int{2, 3}, a.CurrentIndices())

	_, err = u.Subscript("n", []int{0})
	assert.ErrorIs(t, err, symbols.ErrNotAnArray)

	_, err = u.Subscript("undeclared", []int{0})
	assert.ErrorIs(t, err, symbols.ErrNotDeclared)

	assert.Len(t, u.Diagnostics(), 3)
	assert.True(t, u.HasErrors())

	combined := u.Err()
	require.Error(t, combined)
	assert.Len(t, strings.Split(combined.Error(), "\n"), 3)
}

func TestEmit(t *testing.T) {
	u := newTestUnit(t)
	_, err := u.DeclareVariable(symbols.Integer, "i", 1, 1)
	require.NoError(t, err)

	_, err = u.Emit(quad.Add, quad.Sym("i"), quad.Int(1), quad.Sym("j"))
	assert.ErrorIs(t, err, symbols.ErrNotDeclared)
	assert.Zero(t, u.Code().Size())

	_, err = u.Emit(quad.Add, quad.Sym("i"), nil, quad.Sym("i"))
	assert.ErrorIs(t, err, quad.ErrInvalidShape)
	assert.Zero(t, u.Code().Size())

	//the procedure of a call is not a variable
	addr, err := u.Emit(quad.Call, quad.Sym("print"), quad.Int(1), nil)
	require.NoError(t, err)
	assert.Equal(t, quad.Address(1), addr)

	addr, err = u.Emit(quad.JumpIfFalse, quad.Sym("i"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, u.PatchTarget(1, addr+1))

	jump, _ := u.Code().Get(1)
	assert.Equal(t, "2: (jf, i, _, @3)", jump.String())

	assert.ErrorIs(t, u.PatchTarget(0, 1), quad.ErrNotAJump)
	assert.ErrorIs(t, u.PatchTarget(10, 1), quad.ErrPositionOutOfRange)

	assert.ErrorIs(t, u.Backpatch(5, quad.Halt, nil, nil, nil), quad.ErrPositionOutOfRange)

	removed, ok := u.Remove(0)
	require.True(t, ok)
	assert.Equal(t, quad.Call, removed.Op)
	assert.Equal(t, 1, u.Code().Size())
}

func TestResetAndPersist(t *testing.T) {
	u := newTestUnit(t)
	firstID := u.ID()

	_, err := u.DeclareVariable(symbols.Integer, "x", 1, 1)
	require.NoError(t, err)
	u.Emit(quad.Assign, quad.Int(1), nil, quad.Sym("x"))
	u.Emit(quad.Halt, nil, nil, nil)
	u.Subscript("x", []int{0})

	buf := bytes.NewBuffer(nil)
	require.NoError(t, u.Persist(buf))
	assert.Equal(t, "1: (=, 1, _, x)\n2: (halt, _, _, _)\n", buf.String())

	fls := memfs.New()
	require.NoError(t, u.PersistFile(fls, "/listings/test.txt"))
	content, err := util.ReadFile(fls, "/listings/test.txt")
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(content))

	u.Reset()
	assert.NotEqual(t, firstID, u.ID())
	assert.Empty(t, u.Diagnostics())
	assert.Zero(t, u.Code().Size())

	//the counter restarts
	_, err = u.DeclareVariable(symbols.Integer, "x", 1, 1)
	require.NoError(t, err)
	addr, err := u.Emit(quad.Assign, quad.Int(2), nil, quad.Sym("x"))
	require.NoError(t, err)
	assert.Equal(t, quad.DEFAULT_START, addr)
}

func TestCustomStart(t *testing.T) {
	u := New(Config{Name: "test", Start: 100, Logger: testconfig.Logger(t)})
	addr, err := u.Emit(quad.Halt, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, quad.Address(100), addr)
}

func TestQuadrupleTableLogs(t *testing.T) {
	testconfig.AllowParallelization(t)

	buf := bytes.NewBuffer(nil)
	u := New(Config{Name: "test", Logger: zerolog.New(buf).Level(zerolog.DebugLevel)})

	_, err := u.Emit(quad.Halt, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, u.Persist(bytes.NewBuffer(nil)))
	u.Reset()

	var quadLines []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"src":"`+logs.QUAD_SRC_NAME+`"`) {
			quadLines = append(quadLines, line)
		}
	}
	require.Len(t, quadLines, 2)
	assert.Contains(t, quadLines[0], "listing persisted")
	assert.Contains(t, quadLines[1], "quadruple table cleared")
}
