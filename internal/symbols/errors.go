package symbols

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType          = errors.New("unknown type")
	ErrDescriptorFrozen     = errors.New("array descriptor is frozen, no dimension can be added")
	ErrArrayAlreadyAttached = errors.New("an array descriptor is already attached to the symbol")
	ErrAlreadyDeclared      = errors.New("symbol already declared")
	ErrNotDeclared          = errors.New("symbol not declared")

	ErrNotAnArray       = errors.New("symbol is not an array")
	ErrInvalidSubscript = errors.New("invalid subscript")
	ErrInvalidIndices   = errors.New("invalid index list")
	ErrOffsetOverflow   = errors.New("offset does not fit in an int")
)

type SemanticErrorKind int

const (
	NotAnArray SemanticErrorKind = iota + 1
	ArityMismatch
	IndexOutOfRange
)

func (k SemanticErrorKind) String() string {
	switch k {
	case NotAnArray:
		return "not an array"
	case ArityMismatch:
		return "arity mismatch"
	case IndexOutOfRange:
		return "index out of range"
	}
	return "unknown"
}

// SemanticError is reported when a subscript expression is invalid for a symbol.
type SemanticError struct {
	Symbol  string
	Line    int
	Column  int
	Kind    SemanticErrorKind
	Indices []int

	// for arity mismatches: the expected rank, for out of range indices: the dimension.
	Dimension int
}

func (e *SemanticError) Error() string {
	switch e.Kind {
	case NotAnArray:
		return fmt.Sprintf("%d:%d: %s is subscripted but is not an array", e.Line, e.Column, e.Symbol)
	case ArityMismatch:
		return fmt.Sprintf("%d:%d: array %s has %d dimension(s) but %d index(es) were given",
			e.Line, e.Column, e.Symbol, e.Dimension, len(e.Indices))
	default:
		return fmt.Sprintf("%d:%d: array %s: index %d is out of range in dimension %d",
			e.Line, e.Column, e.Symbol, e.Indices[e.Dimension], e.Dimension)
	}
}

func (e *SemanticError) Unwrap() error {
	if e.Kind == NotAnArray {
		return ErrNotAnArray
	}
	return ErrInvalidSubscript
}
