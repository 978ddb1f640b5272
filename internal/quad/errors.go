package quad

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOperator    = errors.New("unknown operator")
	ErrInvalidOperand     = errors.New("invalid operand")
	ErrInvalidShape       = errors.New("invalid quadruple shape")
	ErrNotAJump           = errors.New("quadruple is not a jump")
	ErrInvalidTarget      = errors.New("invalid jump target")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrInconsistentTable  = errors.New("inconsistent quadruple table")
)

// ShapeError is returned when the operands of a quadruple do not match what its operator expects.
type ShapeError struct {
	Op      Operator
	Field   string
	Operand Operand
	Reason  string
}

func (e *ShapeError) Error() string {
	if e.Operand == nil {
		return fmt.Sprintf("%s (%s): %s %s", e.Op.Name(), e.Op, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s %s: %s", e.Op.Name(), e.Op, e.Field, e.Reason, e.Operand)
}

func (e *ShapeError) Unwrap() error {
	return ErrInvalidShape
}

// PersistError is returned when a listing cannot be written, the table is not affected.
type PersistError struct {
	Path string //empty if the listing is written to a stream
	Err  error
}

func (e *PersistError) Error() string {
	if e.Path == "" {
		return "failed to persist the quadruple listing: " + e.Err.Error()
	}
	return fmt.Sprintf("failed to persist the quadruple listing to %s: %s", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
