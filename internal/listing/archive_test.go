package listing

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/inoxlang/quadc/internal/testconfig"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func openArchive(t *testing.T) *Archive {
	archive, err := Open(filepath.Join(t.TempDir(), "data", "listings.db"), testconfig.Logger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		archive.Close()
	})
	return archive
}

func TestArchive(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("save then get", func(t *testing.T) {
		testconfig.AllowParallelization(t)
		archive := openArchive(t)

		id := ulid.Make()
		lines := []string{"1: (+, a, 3, t1)", "2: (j, _, _, @1)"}

		saved, err := archive.Save("main", id, lines)
		require.NoError(t, err)
		assert.Equal(t, id, saved.ID)
		assert.Equal(t, int64(id.Time()), saved.CreatedAt.UnixMilli())

		entry, err := archive.Get(id)
		require.NoError(t, err)
		assert.Equal(t, id, entry.ID)
		assert.Equal(t, "main", entry.Unit)
		assert.Equal(t, lines, entry.Lines)
		assert.True(t, saved.CreatedAt.Equal(entry.CreatedAt))
	})

	t.Run("empty listing", func(t *testing.T) {
		testconfig.AllowParallelization(t)
		archive := openArchive(t)

		id := ulid.Make()
		_, err := archive.Save("empty", id, nil)
		require.NoError(t, err)

		entry, err := archive.Get(id)
		require.NoError(t, err)
		assert.Empty(t, entry.Lines)
	})

	t.Run("an ID cannot be stored twice", func(t *testing.T) {
		testconfig.AllowParallelization(t)
		archive := openArchive(t)

		id := ulid.Make()
		_, err := archive.Save("main", id, []string{"1: (halt, _, _, _)"})
		require.NoError(t, err)

		_, err = archive.Save("main", id, nil)
		assert.ErrorIs(t, err, ErrListingAlreadyStored)

		entry, err := archive.Get(id)
		require.NoError(t, err)
		assert.Len(t, entry.Lines, 1)
	})

	t.Run("missing listing", func(t *testing.T) {
		testconfig.AllowParallelization(t)
		archive := openArchive(t)

		_, err := archive.Get(ulid.Make())
		assert.ErrorIs(t, err, ErrListingNotFound)

		err = archive.Delete(ulid.Make())
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("list is in natural order of unit names", func(t *testing.T) {
		testconfig.AllowParallelization(t)
		archive := openArchive(t)

		for _, name := range []string{"unit10", "unit2", "unit1", "unit2"} {
			_, err := archive.Save(name, ulid.Make(), nil)
			require.NoError(t, err)
		}

		entries, err := archive.List()
		require.NoError(t, err)

		var names []string
		for _, e := range entries {
			names = append(names, e.Unit)
		}
		assert.Equal(t, []string{"unit1", "unit2", "unit2", "unit10"}, names)
		assert.Negative(t, entries[1].ID.Compare(entries[2].ID))
	})

	t.Run("delete", func(t *testing.T) {
		testconfig.AllowParallelization(t)
		archive := openArchive(t)

		id := ulid.Make()
		_, err := archive.Save("main", id, nil)
		require.NoError(t, err)

		require.NoError(t, archive.Delete(id))
		_, err = archive.Get(id)
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("entries survive a reopening", func(t *testing.T) {
		testconfig.AllowParallelization(t)

		path := filepath.Join(t.TempDir(), "listings.db")
		archive, err := Open(path, testconfig.Logger(t))
		require.NoError(t, err)

		id := ulid.Make()
		_, err = archive.Save("main", id, []string{"1: (halt, _, _, _)"})
		require.NoError(t, err)
		require.NoError(t, archive.Close())

		archive, err = Open(path, testconfig.Logger(t))
		require.NoError(t, err)
		defer archive.Close()

		entry, err := archive.Get(id)
		require.NoError(t, err)
		assert.Equal(t, []string{"1: (halt, _, _, _)"}, entry.Lines)
	})

	t.Run("closed archive", func(t *testing.T) {
		testconfig.AllowParallelization(t)

		archive := openArchive(t)
		require.NoError(t, archive.Close())
		require.NoError(t, archive.Close())

		_, err := archive.Save("main", ulid.Make(), nil)
		assert.ErrorIs(t, err, ErrArchiveClosed)
		_, err = archive.Get(ulid.Make())
		assert.ErrorIs(t, err, ErrArchiveClosed)
		_, err = archive.List()
		assert.ErrorIs(t, err, ErrArchiveClosed)
	})

	t.Run("entries are compressed", func(t *testing.T) {
		testconfig.AllowParallelization(t)
		archive := openArchive(t)

		id := ulid.Make()
		_, err := archive.Save("main", id, []string{"1: (halt, _, _, _)"})
		require.NoError(t, err)

		err = archive.db.View(func(tx *bbolt.Tx) error {
			stored := tx.Bucket(BBOLT_LISTINGS_BUCKET).Get(id[:])
			assert.True(t, bytes.HasPrefix(stored, []byte{0x28, 0xb5, 0x2f, 0xfd}))
			return nil
		})
		require.NoError(t, err)
	})
}

func TestArchiveFormatVersion(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("the version is stored on creation", func(t *testing.T) {
		testconfig.AllowParallelization(t)

		archive := openArchive(t)
		assert.Equal(t, ARCHIVE_FORMAT_VERSION, archive.FormatVersion().String())
	})

	t.Run("unsupported version", func(t *testing.T) {
		testconfig.AllowParallelization(t)

		path := filepath.Join(t.TempDir(), "listings.db")

		db, err := bbolt.Open(path, ARCHIVE_FILE_PERM, nil)
		require.NoError(t, err)
		err = db.Update(func(tx *bbolt.Tx) error {
			meta, err := tx.CreateBucketIfNotExists(BBOLT_META_BUCKET)
			if err != nil {
				return err
			}
			return meta.Put(FORMAT_VERSION_KEY, []byte("2.0.0"))
		})
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = Open(path, testconfig.Logger(t))
		assert.ErrorIs(t, err, ErrUnsupportedArchiveFormat)
	})

	t.Run("invalid version", func(t *testing.T) {
		testconfig.AllowParallelization(t)

		path := filepath.Join(t.TempDir(), "listings.db")

		db, err := bbolt.Open(path, ARCHIVE_FILE_PERM, nil)
		require.NoError(t, err)
		err = db.Update(func(tx *bbolt.Tx) error {
			meta, err := tx.CreateBucketIfNotExists(BBOLT_META_BUCKET)
			if err != nil {
				return err
			}
			return meta.Put(FORMAT_VERSION_KEY, []byte("one"))
		})
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = Open(path, testconfig.Logger(t))
		assert.ErrorIs(t, err, ErrUnsupportedArchiveFormat)
	})
}
