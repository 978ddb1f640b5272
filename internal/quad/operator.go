package quad

import (
	"fmt"
	"strings"
)

// Operator is the kind of a quadruple.
type Operator uint8

const (
	Assign Operator = iota + 1
	Add
	Sub
	Mul
	Div
	Mod
	Neg
	Not
	And
	Or
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	Jump
	JumpIfTrue
	JumpIfFalse
	Param
	Call
	Return
	IndexLoad
	IndexStore
	Halt

	lastOperator = Halt
)

type fieldRule uint8

const (
	forbidden fieldRule = iota
	optional
	required
)

type operatorInfo struct {
	name     string
	mnemonic string
	arg1     fieldRule
	arg2     fieldRule
	result   fieldRule
	jump     bool
}

var operatorInfos = [...]operatorInfo{
	Assign: {name: "assign", mnemonic: "=", arg1: required, result: required},

	Add: {name: "add", mnemonic: "+", arg1: required, arg2: required, result: required},
	Sub: {name: "sub", mnemonic: "-", arg1: required, arg2: required, result: required},
	Mul: {name: "mul", mnemonic: "*", arg1: required, arg2: required, result: required},
	Div: {name: "div", mnemonic: "/", arg1: required, arg2: required, result: required},
	Mod: {name: "mod", mnemonic: "%", arg1: required, arg2: required, result: required},
	Neg: {name: "neg", mnemonic: "neg", arg1: required, result: required},
	Not: {name: "not", mnemonic: "!", arg1: required, result: required},
	And: {name: "and", mnemonic: "&&", arg1: required, arg2: required, result: required},
	Or:  {name: "or", mnemonic: "||", arg1: required, arg2: required, result: required},

	Lt: {name: "lt", mnemonic: "<", arg1: required, arg2: required, result: required},
	Le: {name: "le", mnemonic: "<=", arg1: required, arg2: required, result: required},
	Gt: {name: "gt", mnemonic: ">", arg1: required, arg2: required, result: required},
	Ge: {name: "ge", mnemonic: ">=", arg1: required, arg2: required, result: required},
	Eq: {name: "eq", mnemonic: "==", arg1: required, arg2: required, result: required},
	Ne: {name: "ne", mnemonic: "!=", arg1: required, arg2: required, result: required},

	//the target of a jump can be left empty until it is known.
	Jump:        {name: "jump", mnemonic: "j", result: optional, jump: true},
	JumpIfTrue:  {name: "jump-if-true", mnemonic: "jt", arg1: required, result: optional, jump: true},
	JumpIfFalse: {name: "jump-if-false", mnemonic: "jf", arg1: required, result: optional, jump: true},

	Param:  {name: "param", mnemonic: "param", arg1: required},
	Call:   {name: "call", mnemonic: "call", arg1: required, arg2: optional, result: optional},
	Return: {name: "return", mnemonic: "ret", arg1: optional},

	IndexLoad:  {name: "index-load", mnemonic: "=[]", arg1: required, arg2: required, result: required},
	IndexStore: {name: "index-store", mnemonic: "[]=", arg1: required, arg2: required, result: required},

	Halt: {name: "halt", mnemonic: "halt"},
}

func (op Operator) IsValid() bool {
	return op >= Assign && op <= lastOperator
}

// Name returns the long name of the operator (e.g. "add").
func (op Operator) Name() string {
	if !op.IsValid() {
		return fmt.Sprintf("Operator(%d)", op)
	}
	return operatorInfos[op].name
}

// String returns the mnemonic of the operator (e.g. "+"), it is used in listings.
func (op Operator) String() string {
	if !op.IsValid() {
		return fmt.Sprintf("Operator(%d)", op)
	}
	return operatorInfos[op].mnemonic
}

func (op Operator) IsJump() bool {
	return op.IsValid() && operatorInfos[op].jump
}

// Operators returns all operators in declaration order.
func Operators() []Operator {
	ops := make([]Operator, 0, lastOperator)
	for op := Assign; op <= lastOperator; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ParseOperator accepts a mnemonic ("+") or a name ("add"), names are case-insensitive.
func ParseOperator(s string) (Operator, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	for op := Assign; op <= lastOperator; op++ {
		info := operatorInfos[op]
		if s == info.mnemonic || lower == info.name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}
