package quad

import (
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
)

const DEFAULT_START Address = 1

// Table is the ordered list of quadruples of a compilation unit, the order of the list is the execution order.
// Positions (indexes in the list) and addresses are distinct: appending assigns the next address, inserting at
// a position does not assign an address and does not renumber the other quadruples.
// Quadruples are checked when they are added, the zero Quadruple is never accepted.
//
// A Table is not safe for concurrent use, each compilation unit should have its own table.
type Table struct {
	records []*Quadruple
	start   Address
	next    Address
	trace   io.Writer
	logger  zerolog.Logger
}

func NewTable(start Address) *Table {
	if start < 0 {
		panic(fmt.Errorf("the start address should be positive or zero, got %d", start))
	}
	return &Table{
		start:  start,
		next:   start,
		logger: zerolog.Nop(),
	}
}

// SetTrace sets a writer that receives a line for each mutation of the table, nil disables tracing.
func (t *Table) SetTrace(w io.Writer) {
	t.trace = w
}

func (t *Table) SetLogger(logger zerolog.Logger) {
	t.logger = logger
}

// Append checks q, adds it at the end of the table and assigns it the next address, the address is returned.
// The table is not modified if q is invalid.
func (t *Table) Append(q Quadruple) (Address, error) {
	if err := q.Check(); err != nil {
		return NO_ADDRESS, err
	}
	q.address = t.next
	q.placed = true
	t.next++
	t.records = append(t.records, &q)

	if t.trace != nil {
		t.printTrace("APPEND", len(t.records)-1, q)
	}
	return q.address, nil
}

// MustAppend is like Append but panics on error.
func (t *Table) MustAppend(q Quadruple) Address {
	addr, err := t.Append(q)
	if err != nil {
		panic(err)
	}
	return addr
}

// InsertAt inserts q at a position in [0, Size()], inserting at Size() is equivalent to appending without
// assigning an address. The inserted quadruple has no address and the addresses of the other quadruples
// are not modified. The table is not modified if q is invalid.
func (t *Table) InsertAt(position int, q Quadruple) error {
	if position < 0 || position > len(t.records) {
		return fmt.Errorf("%w: cannot insert at %d, size is %d", ErrPositionOutOfRange, position, len(t.records))
	}
	if err := q.Check(); err != nil {
		return err
	}
	q.address = NO_ADDRESS
	q.placed = false
	t.records = slices.Insert(t.records, position, &q)

	if t.trace != nil {
		t.printTrace("INSERT", position, q)
	}
	return nil
}

// Get returns the quadruple at position, the returned pointer can be used to back-patch the quadruple.
func (t *Table) Get(position int) (*Quadruple, bool) {
	if position < 0 || position >= len(t.records) {
		return nil, false
	}
	return t.records[position], true
}

// RemoveAt removes the quadruple at position and returns it.
func (t *Table) RemoveAt(position int) (Quadruple, bool) {
	if position < 0 || position >= len(t.records) {
		return Quadruple{}, false
	}
	removed := t.records[position]
	t.records = slices.Delete(t.records, position, position+1)

	if t.trace != nil {
		t.printTrace("REMOVE", position, *removed)
	}
	return *removed, true
}

// Lookup searches the quadruple having the address addr.
func (t *Table) Lookup(addr Address) (position int, q *Quadruple, ok bool) {
	if addr == NO_ADDRESS {
		return -1, nil, false
	}
	for i, record := range t.records {
		if record.placed && record.address == addr {
			return i, record, true
		}
	}
	return -1, nil, false
}

// RemoveAddress removes the quadruple having the address addr.
func (t *Table) RemoveAddress(addr Address) (Quadruple, bool) {
	position, _, ok := t.Lookup(addr)
	if !ok {
		return Quadruple{}, false
	}
	return t.RemoveAt(position)
}

// Clear removes all quadruples and resets the address counter to the start address.
func (t *Table) Clear() {
	removed := len(t.records)
	clear(t.records)
	t.records = t.records[:0]
	t.next = t.start

	t.logger.Debug().Int("removed", removed).Int("next", int(t.next)).Msg("quadruple table cleared")

	if t.trace != nil {
		fmt.Fprintf(t.trace, "CLEAR  next=%d\n", t.next)
	}
}

func (t *Table) Size() int {
	return len(t.records)
}

// NextAddress returns the address that the next appended quadruple will get.
func (t *Table) NextAddress() Address {
	return t.next
}

func (t *Table) Start() Address {
	return t.start
}

// Records returns a copy of the quadruples in list order.
func (t *Table) Records() []Quadruple {
	records := make([]Quadruple, len(t.records))
	for i, record := range t.records {
		records[i] = *record
	}
	return records
}

// ForEach calls fn for each quadruple in list order, iteration stops at the first error.
func (t *Table) ForEach(fn func(position int, q Quadruple) error) error {
	for i, record := range t.records {
		if err := fn(i, *record); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) printTrace(action string, position int, q Quadruple) {
	fmt.Fprintf(t.trace, "%-6s %04d %s\n", action, position, q)
}
