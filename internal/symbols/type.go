package symbols

import (
	"fmt"
	"strings"
)

// Type is the declared type tag of a symbol.
type Type int

const (
	UnknownType Type = iota
	Integer
	Real
	Char
	Bool
)

var typeNames = [...]string{
	UnknownType: "unknown",
	Integer:     "integer",
	Real:        "real",
	Char:        "char",
	Bool:        "bool",
}

// storage units of one element.
var typeSizes = [...]int{
	UnknownType: 0,
	Integer:     4,
	Real:        8,
	Char:        1,
	Bool:        1,
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Size returns the number of storage units occupied by one value of the type.
func (t Type) Size() int {
	if t < 0 || int(t) >= len(typeSizes) {
		return 0
	}
	return typeSizes[t]
}

func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return Integer, nil
	case "real", "float":
		return Real, nil
	case "char":
		return Char, nil
	case "bool", "boolean":
		return Bool, nil
	}
	return UnknownType, fmt.Errorf("%w: %q", ErrUnknownType, s)
}
