package quad

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-json"
	"github.com/inoxlang/quadc/internal/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSampleTable() *Table {
	table := NewTable(DEFAULT_START)
	table.MustAppend(MustNew(Assign, Int(0), nil, Sym("i")))
	table.MustAppend(MustNew(Lt, Sym("i"), Int(10), Temp(1)))
	table.MustAppend(MustNew(IndexLoad, Sym("a"), Sym("i"), Temp(2)))
	table.InsertAt(2, MustNew(JumpIfFalse, Temp(1), nil, Target(5)))
	table.MustAppend(MustNew(Mul, Temp(2), Real(0.5), Temp(3)))
	return table
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

func TestPersist(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("one line per quadruple in list order", func(t *testing.T) {
		table := newSampleTable()
		buf := bytes.NewBuffer(nil)
		require.NoError(t, table.Persist(buf))

		var lines []string
		scanner := bufio.NewScanner(buf)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}

		require.Len(t, lines, table.Size())
		for i, q := range table.Records() {
			assert.Equal(t, q.String(), lines[i])
		}
		assert.Equal(t, "?: (jf, t1, _, @5)", lines[2])
	})

	t.Run("empty table", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		require.NoError(t, NewTable(DEFAULT_START).Persist(buf))
		assert.Empty(t, buf.String())
	})

	t.Run("write error", func(t *testing.T) {
		table := newSampleTable()
		before := table.Listing()

		writeErr := errors.New("disk full")
		err := table.Persist(failingWriter{err: writeErr})

		var persistErr *PersistError
		require.ErrorAs(t, err, &persistErr)
		assert.ErrorIs(t, err, writeErr)
		assert.Empty(t, persistErr.Path)

		//the table is not affected
		assert.Equal(t, before, table.Listing())
		assert.Equal(t, Address(5), table.NextAddress())
	})
}

func TestPersistFile(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("parent directories are created", func(t *testing.T) {
		fls := memfs.New()
		table := newSampleTable()

		require.NoError(t, table.PersistFile(fls, "/out/listings/main.txt"))

		content, err := util.ReadFile(fls, "/out/listings/main.txt")
		require.NoError(t, err)
		assert.Equal(t, strings.Join(table.Listing(), "\n")+"\n", string(content))
	})

	t.Run("previous listing is overwritten", func(t *testing.T) {
		fls := memfs.New()
		table := newSampleTable()
		require.NoError(t, table.PersistFile(fls, "main.txt"))

		table.Clear()
		table.MustAppend(MustNew(Halt, nil, nil, nil))
		require.NoError(t, table.PersistFile(fls, "main.txt"))

		content, err := util.ReadFile(fls, "main.txt")
		require.NoError(t, err)
		assert.Equal(t, "1: (halt, _, _, _)\n", string(content))
	})

	t.Run("open error", func(t *testing.T) {
		fls := memfs.New()
		//a file is in place of the parent directory.
		require.NoError(t, util.WriteFile(fls, "/out", []byte("x"), 0o644))

		table := newSampleTable()
		err := table.PersistFile(fls, "/out/main.txt")

		var persistErr *PersistError
		require.ErrorAs(t, err, &persistErr)
		assert.Equal(t, "/out/main.txt", persistErr.Path)
		assert.Equal(t, 5, table.Size())
	})

	t.Run("write error: the file is closed", func(t *testing.T) {
		writeErr := errors.New("write error")
		fls := &failingFilesystem{Filesystem: memfs.New(), writeErr: writeErr}

		table := newSampleTable()
		err := table.PersistFile(fls, "main.txt")
		assert.ErrorIs(t, err, writeErr)
		assert.True(t, fls.closed)
		assert.Equal(t, 5, table.Size())
	})
}

type failingFilesystem struct {
	billy.Filesystem
	writeErr error
	closed   bool
}

func (fls *failingFilesystem) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	f, err := fls.Filesystem.OpenFile(filename, flag, perm)
	if err != nil {
		return nil, err
	}
	return &failingFile{File: f, fls: fls}, nil
}

type failingFile struct {
	billy.File
	fls *failingFilesystem
}

func (f *failingFile) Write(p []byte) (int, error) {
	return 0, f.fls.writeErr
}

func (f *failingFile) Close() error {
	f.fls.closed = true
	return f.File.Close()
}

func TestCheckAddresses(t *testing.T) {
	testconfig.AllowParallelization(t)

	table := newSampleTable()
	assert.NoError(t, table.CheckAddresses())
	assert.Equal(t, []int{2}, table.Unplaced())

	//corrupt the table
	table.records[0].address = 3
	assert.ErrorIs(t, table.CheckAddresses(), ErrInconsistentTable)

	table.records[0].address = 50
	assert.ErrorIs(t, table.CheckAddresses(), ErrInconsistentTable)
}

func TestListingJSON(t *testing.T) {
	testconfig.AllowParallelization(t)

	table := newSampleTable()

	data, err := ListingJSON(table, false)
	require.NoError(t, err)

	var list []JSONQuadruple
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 5)

	assert.Equal(t, 1, *list[0].Address)
	assert.Equal(t, "=", list[0].Op)
	assert.Equal(t, "assign", list[0].Name)
	assert.Equal(t, &JSONOperand{Kind: IntOperand, Text: "0"}, list[0].Arg1)
	assert.Nil(t, list[0].Arg2)

	assert.Nil(t, list[2].Address)
	assert.Equal(t, &JSONOperand{Kind: TargetOperand, Text: "@5"}, list[2].Result)

	q, _ := table.Get(4)
	single, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":4,"op":"*","name":"mul",`+
		`"arg1":{"kind":"temp","text":"t2"},"arg2":{"kind":"real","text":"0.5"},"result":{"kind":"temp","text":"t3"}}`,
		string(single))

	indented, err := ListingJSON(table, true)
	require.NoError(t, err)
	assert.Contains(t, string(indented), "\n  ")
}
