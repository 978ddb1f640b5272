package replay

import (
	"fmt"
	"io"

	"github.com/inoxlang/quadc/internal/logs"
	"github.com/inoxlang/quadc/internal/quad"
	"github.com/inoxlang/quadc/internal/symbols"
	"github.com/inoxlang/quadc/internal/unit"
	"github.com/rs/zerolog"
)

type RunConfig struct {
	Logger zerolog.Logger

	//if not nil the mutations of the quadruple table are traced.
	Trace io.Writer

	//overrides the start address of the script if greater than zero.
	Start quad.Address
}

// EventError is returned by Run when an event cannot be applied, the events before it have been applied.
type EventError struct {
	Index int
	Kind  string
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (%s): %s", e.Index, e.Kind, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// Run applies the events of the script to a new unit. Semantic errors (duplicate declarations, invalid
// subscripts) are recorded as diagnostics of the unit and do not stop the replay, any other error stops it
// and is returned as an *EventError along with the unit.
func Run(script *Script, config RunConfig) (*unit.Unit, error) {
	logger := logs.ChildLoggerForSource(config.Logger, logs.REPLAY_SRC_NAME)

	start := quad.Address(script.Start)
	if config.Start > 0 {
		start = config.Start
	}

	u := unit.New(unit.Config{
		Name:   script.Unit,
		Start:  start,
		Logger: config.Logger,
		Trace:  config.Trace,
	})

	for i, event := range script.Events {
		kind := event.Kind()

		diagnosticCount := len(u.Diagnostics())

		err := apply(u, event)
		if err == nil {
			logger.Debug().Int("event", i).Str("kind", kind).Msg("applied")
			continue
		}

		//the error has been recorded as a diagnostic by the unit.
		if len(u.Diagnostics()) > diagnosticCount {
			logger.Debug().Int("event", i).Str("kind", kind).Err(err).Msg("semantic error")
			continue
		}

		logger.Debug().Int("event", i).Str("kind", kind).Err(err).Msg("replay stopped")
		return u, &EventError{Index: i, Kind: kind, Err: err}
	}

	return u, nil
}

func apply(u *unit.Unit, event Event) error {
	switch {
	case event.Declare != nil:
		decl := event.Declare
		typ, err := symbols.ParseType(decl.Type)
		if err != nil {
			return err
		}
		_, err = u.DeclareVariable(typ, decl.Name, decl.Line, decl.Column, decl.Dims...)
		return err
	case event.Subscript != nil:
		_, err := u.Subscript(event.Subscript.Name, event.Subscript.Indices)
		return err
	case event.Emit != nil:
		op, err := quad.ParseOperator(event.Emit.Op)
		if err != nil {
			return err
		}
		_, err = u.Emit(op, event.Emit.Arg1.Operand, event.Emit.Arg2.Operand, event.Emit.Result.Operand)
		return err
	case event.Backpatch != nil:
		patch := event.Backpatch
		op, err := quad.ParseOperator(patch.Op)
		if err != nil {
			return err
		}
		return u.Backpatch(patch.Position, op, patch.Arg1.Operand, patch.Arg2.Operand, patch.Result.Operand)
	case event.PatchTarget != nil:
		return u.PatchTarget(event.PatchTarget.Position, quad.Address(event.PatchTarget.Target))
	case event.Remove != nil:
		if _, ok := u.Remove(*event.Remove); !ok {
			return fmt.Errorf("%w: %d", quad.ErrPositionOutOfRange, *event.Remove)
		}
		return nil
	case event.Reset != nil:
		u.Reset()
		return nil
	default:
		return ErrInvalidScript
	}
}
