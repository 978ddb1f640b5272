package quad

import (
	"bufio"
	"errors"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/inoxlang/quadc/internal/afs"
)

// Persist writes the listing of the table to w: one quadruple per line, in list order.
// The table is not modified, even on error.
func (t *Table) Persist(w io.Writer) error {
	if err := t.writeListing(w); err != nil {
		t.logger.Warn().Err(err).Msg("failed to persist the listing")
		return &PersistError{Err: err}
	}
	t.logger.Debug().Int("quadruples", len(t.records)).Msg("listing persisted")
	return nil
}

// PersistFile writes the listing of the table to the file at path, the parent directories are created if
// necessary. The file is always closed before PersistFile returns.
func (t *Table) PersistFile(fls billy.Filesystem, path string) (finalErr error) {
	f, err := afs.CreateTruncate(fls, path)
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}

	defer func() {
		if finalErr != nil {
			t.logger.Warn().Err(finalErr).Str("path", path).Msg("failed to persist the listing")
		} else {
			t.logger.Debug().Int("quadruples", len(t.records)).Str("path", path).Msg("listing persisted")
		}
	}()

	defer func() {
		closeErr := f.Close()
		if closeErr != nil {
			if finalErr == nil {
				finalErr = &PersistError{Path: path, Err: closeErr}
			} else {
				finalErr = &PersistError{Path: path, Err: errors.Join(finalErr.(*PersistError).Err, closeErr)}
			}
		}
	}()

	if err := t.writeListing(f); err != nil {
		return &PersistError{Path: path, Err: err}
	}

	if err := afs.SyncIfPossible(f); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}

func (t *Table) writeListing(w io.Writer) error {
	buffered := bufio.NewWriter(w)

	for _, record := range t.records {
		if _, err := buffered.WriteString(record.String()); err != nil {
			return err
		}
		if err := buffered.WriteByte('\n'); err != nil {
			return err
		}
	}
	return buffered.Flush()
}

// Listing returns the lines that Persist would write.
func (t *Table) Listing() []string {
	lines := make([]string, len(t.records))
	for i, record := range t.records {
		lines[i] = record.String()
	}
	return lines
}
