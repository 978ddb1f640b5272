package replay

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-yaml"
	"github.com/inoxlang/quadc/internal/quad"
)

var (
	ErrInvalidScript = errors.New("invalid event script")
)

// Script is a sequence of events emitted by the front end of a compiler for a single compilation unit.
//
//	unit: demo
//	events:
//	  - declare: {type: int, name: a, line: 1, column: 5, dims: [2, 3]}
//	  - subscript: {name: a, indices: [1, 2]}
//	  - emit: {op: "+", arg1: a, arg2: 3, result: $1}
//	  - backpatch: {position: 1, op: j}
//	  - patch-target: {position: 1, target: 3}
//	  - remove: 0
//	  - reset: {}
type Script struct {
	Unit   string  `yaml:"unit"`
	Start  int     `yaml:"start,omitempty"`
	Events []Event `yaml:"events"`
}

// Event has exactly one non-nil field.
type Event struct {
	Declare     *DeclareEvent     `yaml:"declare,omitempty"`
	Subscript   *SubscriptEvent   `yaml:"subscript,omitempty"`
	Emit        *QuadrupleEvent   `yaml:"emit,omitempty"`
	Backpatch   *QuadrupleEvent   `yaml:"backpatch,omitempty"`
	PatchTarget *PatchTargetEvent `yaml:"patch-target,omitempty"`
	Remove      *int              `yaml:"remove,omitempty"`
	Reset       *struct{}         `yaml:"reset,omitempty"`
}

type DeclareEvent struct {
	Type   string `yaml:"type"`
	Name   string `yaml:"name"`
	Line   int    `yaml:"line"`
	Column int    `yaml:"column"`
	Dims   []int  `yaml:"dims,omitempty"`
}

type SubscriptEvent struct {
	Name    string `yaml:"name"`
	Indices []int  `yaml:"indices"`
}

type QuadrupleEvent struct {
	//only used by backpatch events.
	Position int `yaml:"position,omitempty"`

	Op     string  `yaml:"op"`
	Arg1   Operand `yaml:"arg1,omitempty"`
	Arg2   Operand `yaml:"arg2,omitempty"`
	Result Operand `yaml:"result,omitempty"`
}

type PatchTargetEvent struct {
	Position int `yaml:"position"`
	Target   int `yaml:"target"`
}

// Operand is an operand in an event script. Strings are parsed with quad.ParseOperand, YAML integers and
// floats are respectively Int and Real operands.
type Operand struct {
	quad.Operand
}

func (o *Operand) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}

	switch val := v.(type) {
	case nil:
		o.Operand = nil
	case string:
		operand, err := quad.ParseOperand(val)
		if err != nil {
			return err
		}
		o.Operand = operand
	case int:
		o.Operand = quad.Int(val)
	case int64:
		o.Operand = quad.Int(val)
	case uint64:
		if val > math.MaxInt64 {
			return fmt.Errorf("%w: integer %d is too large", quad.ErrInvalidOperand, val)
		}
		o.Operand = quad.Int(int64(val))
	case float64:
		o.Operand = quad.Real(val)
	default:
		return fmt.Errorf("%w: unexpected value of type %T", quad.ErrInvalidOperand, v)
	}
	return nil
}

// Kind returns the name of the event, an empty string is returned if the event has no field or
// more than one field set.
func (e Event) Kind() string {
	kind := ""
	count := 0

	set := func(isSet bool, name string) {
		if isSet {
			count++
			kind = name
		}
	}
	set(e.Declare != nil, "declare")
	set(e.Subscript != nil, "subscript")
	set(e.Emit != nil, "emit")
	set(e.Backpatch != nil, "backpatch")
	set(e.PatchTarget != nil, "patch-target")
	set(e.Remove != nil, "remove")
	set(e.Reset != nil, "reset")

	if count != 1 {
		return ""
	}
	return kind
}

func Parse(data []byte) (*Script, error) {
	var script Script
	if err := yaml.UnmarshalWithOptions(data, &script, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

func ParseFile(fls billy.Filesystem, path string) (*Script, error) {
	data, err := util.ReadFile(fls, path)
	if err != nil {
		return nil, err
	}
	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}

// Validate checks the structure of the script, operators and types are checked when the script is run.
func (s *Script) Validate() error {
	if s.Unit == "" {
		return fmt.Errorf("%w: missing unit name", ErrInvalidScript)
	}
	if !isValidUnitName(s.Unit) {
		return fmt.Errorf("%w: the unit name %q should not contain path separators or be a relative path", ErrInvalidScript, s.Unit)
	}
	if s.Start < 0 {
		return fmt.Errorf("%w: negative start address", ErrInvalidScript)
	}
	for i, event := range s.Events {
		if event.Kind() == "" {
			return fmt.Errorf("%w: event %d should have exactly one of declare, subscript, emit, backpatch, patch-target, remove, reset", ErrInvalidScript, i)
		}
		if event.Declare != nil && event.Declare.Name == "" {
			return fmt.Errorf("%w: event %d: missing name", ErrInvalidScript, i)
		}
		if event.Subscript != nil && event.Subscript.Name == "" {
			return fmt.Errorf("%w: event %d: missing name", ErrInvalidScript, i)
		}
	}
	return nil
}

// isValidUnitName reports whether name can be used as the base name of the listing file.
func isValidUnitName(name string) bool {
	if name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
