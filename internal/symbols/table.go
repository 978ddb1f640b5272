package symbols

import (
	"fmt"

	"github.com/tidwall/btree"
)

// Table is a flat symbol table keyed by Symbol.Key(), iteration is ordered by name.
// Scoping is not handled: callers needing nested scopes use one table per scope.
type Table struct {
	entries btree.Map[string, *Symbol]
}

func NewTable() *Table {
	return &Table{}
}

// Define registers s, ErrAlreadyDeclared is returned if a symbol with the same key is present.
func (t *Table) Define(s *Symbol) error {
	key := string(s.Key())
	if prev, ok := t.entries.Get(key); ok {
		return fmt.Errorf("%w: %s (previous declaration at %d:%d)", ErrAlreadyDeclared, s.Name, prev.Line, prev.Column)
	}
	t.entries.Set(key, s)
	return nil
}

func (t *Table) Lookup(name string) (*Symbol, bool) {
	return t.entries.Get(name)
}

// Contains uses the same identity as Symbol.Equal.
func (t *Table) Contains(s *Symbol) bool {
	_, ok := t.entries.Get(string(s.Key()))
	return ok
}

func (t *Table) Remove(name string) (*Symbol, bool) {
	return t.entries.Delete(name)
}

func (t *Table) Len() int {
	return t.entries.Len()
}

// ForEach calls fn for each symbol in name order, iteration stops if fn returns false.
func (t *Table) ForEach(fn func(s *Symbol) bool) {
	t.entries.Scan(func(_ string, s *Symbol) bool {
		return fn(s)
	})
}

func (t *Table) Clear() {
	t.entries = btree.Map[string, *Symbol]{}
}
