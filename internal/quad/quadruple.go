package quad

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is the identity of a quadruple in the generated program. It is assigned by the table when the
// quadruple is appended and never changes afterwards, even if quadruples are inserted before it.
type Address int

const NO_ADDRESS Address = -1

const (
	EMPTY_OPERAND     = "_"
	NO_ADDRESS_STRING = "?"
)

// Quadruple is a three-address instruction. The zero value and quadruples created with New are unplaced:
// only Table.Append gives an address.
type Quadruple struct {
	Op     Operator
	Arg1   Operand
	Arg2   Operand
	Result Operand

	address Address
	placed  bool
}

// New creates an unplaced quadruple after checking that the operands match the operator.
func New(op Operator, arg1, arg2, result Operand) (Quadruple, error) {
	q := Quadruple{
		Op:     op,
		Arg1:   arg1,
		Arg2:   arg2,
		Result: result,
	}
	if err := q.Check(); err != nil {
		return Quadruple{}, err
	}
	return q, nil
}

// MustNew is like New but panics on error.
func MustNew(op Operator, arg1, arg2, result Operand) Quadruple {
	q, err := New(op, arg1, arg2, result)
	if err != nil {
		panic(err)
	}
	return q
}

// Check verifies the shape of the quadruple.
func (q Quadruple) Check() error {
	if !q.Op.IsValid() {
		return ErrUnknownOperator
	}
	info := operatorInfos[q.Op]

	if err := checkField(q.Op, "arg1", info.arg1, q.Arg1); err != nil {
		return err
	}
	if err := checkField(q.Op, "arg2", info.arg2, q.Arg2); err != nil {
		return err
	}
	if err := checkField(q.Op, "result", info.result, q.Result); err != nil {
		return err
	}

	switch q.Result.(type) {
	case nil:
	case Target:
		if !info.jump {
			return &ShapeError{Op: q.Op, Field: "result", Operand: q.Result, Reason: "can only be an instruction address for jumps"}
		}
	case Sym, Temp:
		if info.jump {
			return &ShapeError{Op: q.Op, Field: "result", Operand: q.Result, Reason: "should be an instruction address"}
		}
	default:
		return &ShapeError{Op: q.Op, Field: "result", Operand: q.Result, Reason: "cannot be a constant"}
	}

	switch q.Op {
	case IndexLoad, Call:
		if _, ok := q.Arg1.(Sym); !ok {
			return &ShapeError{Op: q.Op, Field: "arg1", Operand: q.Arg1, Reason: "should be a symbol"}
		}
	case IndexStore:
		if _, ok := q.Result.(Sym); !ok {
			return &ShapeError{Op: q.Op, Field: "result", Operand: q.Result, Reason: "should be a symbol"}
		}
	}
	return nil
}

func checkField(op Operator, name string, rule fieldRule, o Operand) error {
	switch {
	case rule == required && o == nil:
		return &ShapeError{Op: op, Field: name, Reason: "is missing"}
	case rule == forbidden && o != nil:
		return &ShapeError{Op: op, Field: name, Operand: o, Reason: "is not expected"}
	}
	return nil
}

// Address returns the address assigned by the table, NO_ADDRESS if the quadruple was not appended.
func (q Quadruple) Address() Address {
	if !q.placed {
		return NO_ADDRESS
	}
	return q.address
}

func (q Quadruple) HasAddress() bool {
	return q.placed
}

// SetTarget sets the target of a jump, it is used to back-patch jumps once the target is known.
func (q *Quadruple) SetTarget(addr Address) error {
	if !q.Op.IsJump() {
		return ErrNotAJump
	}
	if addr < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTarget, addr)
	}
	q.Result = Target(addr)
	return nil
}

// String returns the listing line of the quadruple: "<address>: (<op>, <arg1>, <arg2>, <result>)".
func (q Quadruple) String() string {
	var b strings.Builder

	if !q.placed {
		b.WriteString(NO_ADDRESS_STRING)
	} else {
		b.WriteString(strconv.Itoa(int(q.address)))
	}
	b.WriteString(": (")
	b.WriteString(q.Op.String())
	for _, o := range [3]Operand{q.Arg1, q.Arg2, q.Result} {
		b.WriteString(", ")
		b.WriteString(formatOperand(o))
	}
	b.WriteByte(')')
	return b.String()
}
