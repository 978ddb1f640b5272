package quad

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Operand is an argument or the result of a quadruple. The implementations are Sym, Temp, Int, Real, Char and
// Target; a nil Operand means the field is empty.
type Operand interface {
	String() string
	operand()
}

// Sym references a declared symbol.
type Sym string

// Temp references a compiler-generated temporary.
type Temp int

// Int, Real and Char are constants.
type (
	Int  int64
	Real float64
	Char rune
)

// Target references the address of an instruction.
type Target Address

func (Sym) operand()    {}
func (Temp) operand()   {}
func (Int) operand()    {}
func (Real) operand()   {}
func (Char) operand()   {}
func (Target) operand() {}

func (s Sym) String() string { return string(s) }

func (t Temp) String() string { return "t" + strconv.Itoa(int(t)) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (r Real) String() string {
	s := strconv.FormatFloat(float64(r), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") { //NaN and Inf contain an 'n'
		s += ".0"
	}
	return s
}

func (c Char) String() string { return strconv.QuoteRune(rune(c)) }

func (t Target) String() string { return "@" + strconv.Itoa(int(t)) }

type OperandKind string

const (
	NoOperand     OperandKind = "none"
	SymOperand    OperandKind = "sym"
	TempOperand   OperandKind = "temp"
	IntOperand    OperandKind = "int"
	RealOperand   OperandKind = "real"
	CharOperand   OperandKind = "char"
	TargetOperand OperandKind = "target"
)

func KindOf(o Operand) OperandKind {
	switch o.(type) {
	case nil:
		return NoOperand
	case Sym:
		return SymOperand
	case Temp:
		return TempOperand
	case Int:
		return IntOperand
	case Real:
		return RealOperand
	case Char:
		return CharOperand
	case Target:
		return TargetOperand
	default:
		panic(fmt.Errorf("unknown operand type %T", o))
	}
}

func formatOperand(o Operand) string {
	if o == nil {
		return EMPTY_OPERAND
	}
	return o.String()
}

// ParseOperand parses the textual form of an operand:
//
//	_ or empty  no operand
//	@12         Target
//	$3          Temp
//	42, -1      Int
//	1.5         Real
//	'c'         Char
//	name        Sym
func ParseOperand(s string) (Operand, error) {
	s = strings.TrimSpace(s)

	switch {
	case s == "" || s == EMPTY_OPERAND:
		return nil, nil
	case s[0] == '@':
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid target %q", ErrInvalidOperand, s)
		}
		return Target(n), nil
	case s[0] == '$':
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid temporary %q", ErrInvalidOperand, s)
		}
		return Temp(n), nil
	case s[0] == '\'':
		r, err := strconv.Unquote(s)
		if err != nil || utf8.RuneCountInString(r) != 1 {
			return nil, fmt.Errorf("%w: invalid char literal %q", ErrInvalidOperand, s)
		}
		c, _ := utf8.DecodeRuneInString(r)
		return Char(c), nil
	case s[0] == '-' || s[0] == '+' || unicode.IsDigit(rune(s[0])):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Real(f), nil
		}
		return nil, fmt.Errorf("%w: invalid number %q", ErrInvalidOperand, s)
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return nil, fmt.Errorf("%w: invalid symbol name %q", ErrInvalidOperand, s)
	}
	return Sym(s), nil
}
