package symbols

import (
	"hash/maphash"
	"math"
	"slices"
)

var keySeed = maphash.MakeSeed()

// Key is the identity of a symbol inside a symbol table: its name.
type Key string

// Symbol is the record of a declared variable.
// Two symbols are considered equal if they have the same name, the type and the position are ignored.
type Symbol struct {
	Name   string
	Type   Type
	Line   int
	Column int

	elementSize    int
	array          *ArrayDescriptor
	currentIndices []int
}

// Declare creates a symbol, it does not register it in any table.
func Declare(typ Type, name string, line, column int) *Symbol {
	return &Symbol{
		Name:   name,
		Type:   typ,
		Line:   line,
		Column: column,
	}
}

func (s *Symbol) Key() Key {
	return Key(s.Name)
}

func (s *Symbol) Equal(other *Symbol) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Key() == other.Key()
}

// Hash only depends on the key of the symbol.
func (s *Symbol) Hash() uint64 {
	return maphash.String(keySeed, string(s.Key()))
}

// AttachArray binds the array descriptor of the symbol, this can only be done once.
func (s *Symbol) AttachArray(d *ArrayDescriptor) error {
	if s.array != nil {
		return ErrArrayAlreadyAttached
	}
	s.array = d
	return nil
}

func (s *Symbol) ArrayDescriptor() (*ArrayDescriptor, bool) {
	return s.array, s.array != nil
}

func (s *Symbol) IsArray() bool {
	return s.array != nil
}

func (s *Symbol) SetElementSize(n int) {
	s.elementSize = n
}

func (s *Symbol) ElementSize() int {
	return s.elementSize
}

// StorageSize returns the element size multiplied by the number of elements (1 for scalars).
func (s *Symbol) StorageSize() int {
	if s.array == nil {
		return s.elementSize
	}
	count := s.array.Count()
	if s.elementSize > 0 && count > math.MaxInt/s.elementSize {
		return math.MaxInt
	}
	return s.elementSize * count
}

// SetCurrentIndices records the index list used at the subscript site being analyzed.
func (s *Symbol) SetCurrentIndices(indices []int) {
	s.currentIndices = slices.Clone(indices)
}

func (s *Symbol) CurrentIndices() []int {
	return slices.Clone(s.currentIndices)
}

// CheckIndices checks a subscript of the symbol, a *SemanticError is returned if the symbol is not an array
// or if the indices are not valid for its descriptor.
func (s *Symbol) CheckIndices(indices []int) error {
	if s.array == nil {
		return s.semanticError(NotAnArray, indices, 0)
	}

	dim, ok := s.array.firstInvalidIndex(indices)
	if ok {
		return nil
	}
	if dim < 0 {
		return s.semanticError(ArityMismatch, indices, s.array.Rank())
	}
	return s.semanticError(IndexOutOfRange, indices, dim)
}

func (s *Symbol) semanticError(kind SemanticErrorKind, indices []int, dim int) *SemanticError {
	return &SemanticError{
		Symbol:    s.Name,
		Line:      s.Line,
		Column:    s.Column,
		Kind:      kind,
		Indices:   slices.Clone(indices),
		Dimension: dim,
	}
}

// String returns "<type> <name>" for scalars and "<type> <name>[]...[]" for arrays.
func (s *Symbol) String() string {
	str := s.Type.String() + " " + s.Name
	if s.array != nil {
		str += s.array.Describe()
	}
	return str
}
