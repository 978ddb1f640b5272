package unit

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/inoxlang/quadc/internal/logs"
	"github.com/inoxlang/quadc/internal/quad"
	"github.com/inoxlang/quadc/internal/symbols"
	"github.com/inoxlang/quadc/internal/utils"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

var (
	ErrDeclarationInProgress = errors.New("a declaration is already in progress")
	ErrNoDeclaration         = errors.New("no declaration in progress")
)

type Config struct {
	Name string

	//address of the first quadruple, defaults to quad.DEFAULT_START.
	Start  quad.Address
	Logger zerolog.Logger

	//if not nil the mutations of the quadruple table are traced.
	Trace io.Writer
}

// Unit holds the symbols and the quadruples of a compilation unit. It is the interface used by the semantic
// analyzer and the code generator. A Unit is not safe for concurrent use.
type Unit struct {
	id   ulid.ULID
	name string

	symbols *symbols.Table
	code    *quad.Table

	//declaration in progress
	pending *symbols.Symbol
	array   *symbols.ArrayDescriptor

	diagnostics []Diagnostic
	logger      zerolog.Logger
	baseLogger  zerolog.Logger
}

func New(config Config) *Unit {
	start := config.Start
	if start <= 0 {
		start = quad.DEFAULT_START
	}

	code := quad.NewTable(start)
	code.SetTrace(config.Trace)
	code.SetLogger(logs.ChildLoggerForSource(config.Logger, logs.QUAD_SRC_NAME))

	u := &Unit{
		name:       config.Name,
		symbols:    symbols.NewTable(),
		code:       code,
		baseLogger: logs.ChildLoggerForSource(config.Logger, logs.UNIT_SRC_NAME),
	}
	u.setID(ulid.Make())
	return u
}

func (u *Unit) setID(id ulid.ULID) {
	u.id = id
	u.logger = u.baseLogger.With().Str("unit", u.name).Str("unitID", id.String()).Logger()
}

func (u *Unit) ID() ulid.ULID {
	return u.id
}

func (u *Unit) Name() string {
	return u.name
}

func (u *Unit) Symbols() *symbols.Table {
	return u.symbols
}

func (u *Unit) Code() *quad.Table {
	return u.code
}

func (u *Unit) Logger() zerolog.Logger {
	return u.logger
}

// Declare starts the declaration of a variable, EndDeclaration should be called once all the dimensions of the
// array (if any) have been added.
func (u *Unit) Declare(typ symbols.Type, name string, line, column int) (*symbols.Symbol, error) {
	if u.pending != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeclarationInProgress, u.pending.Name)
	}
	if prev, ok := u.symbols.Lookup(name); ok {
		err := fmt.Errorf("%w: %s (previous declaration at %d:%d)", symbols.ErrAlreadyDeclared, name, prev.Line, prev.Column)
		u.addError(name, line, column, err)
		return nil, err
	}

	u.pending = symbols.Declare(typ, name, line, column)
	return u.pending, nil
}

// AddDimension adds a dimension to the declaration in progress, the stored extent is returned.
func (u *Unit) AddDimension(extent int) (int, error) {
	if u.pending == nil {
		return 0, ErrNoDeclaration
	}
	if u.array == nil {
		logger := logs.ChildLoggerForSource(u.logger, logs.SYMBOLS_SRC_NAME).With().Str("symbol", u.pending.Name).Logger()
		u.array = symbols.NewArrayDescriptor(logger)
	}

	stored, err := u.array.AddDimension(extent)
	if err != nil {
		return 0, err
	}

	if stored != extent {
		u.diagnostics = append(u.diagnostics, Diagnostic{
			Severity: Warning,
			Symbol:   u.pending.Name,
			Line:     u.pending.Line,
			Column:   u.pending.Column,
			Message: fmt.Sprintf("%d:%d: invalid size %d for dimension %d of array %s, it is replaced by %d",
				u.pending.Line, u.pending.Column, extent, u.array.Rank()-1, u.pending.Name, stored),
		})
	}
	return stored, nil
}

// EndDeclaration ends the declaration in progress: the array descriptor is frozen and attached, the element
// size is set and the symbol is registered.
func (u *Unit) EndDeclaration() (*symbols.Symbol, error) {
	if u.pending == nil {
		return nil, ErrNoDeclaration
	}
	sym, array := u.pending, u.array
	u.pending, u.array = nil, nil

	if array != nil {
		array.Freeze()
		if err := sym.AttachArray(array); err != nil {
			return nil, err
		}
	}
	sym.SetElementSize(sym.Type.Size())

	if err := u.symbols.Define(sym); err != nil {
		u.addError(sym.Name, sym.Line, sym.Column, err)
		return nil, err
	}

	u.logger.Debug().Str("symbol", sym.String()).Int("size", sym.StorageSize()).Msg("declared")
	return sym, nil
}

// DeclareVariable declares a variable in a single call, extents is empty for scalars.
func (u *Unit) DeclareVariable(typ symbols.Type, name string, line, column int, extents ...int) (*symbols.Symbol, error) {
	if _, err := u.Declare(typ, name, line, column); err != nil {
		return nil, err
	}
	for _, extent := range extents {
		if _, err := u.AddDimension(extent); err != nil {
			u.pending, u.array = nil, nil
			return nil, err
		}
	}
	return u.EndDeclaration()
}

// Subscript checks the index list used at a subscript site of the array name. Semantic errors are recorded
// as diagnostics and returned.
func (u *Unit) Subscript(name string, indices []int) (*symbols.Symbol, error) {
	sym, ok := u.symbols.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", symbols.ErrNotDeclared, name)
		u.addError(name, 0, 0, err)
		return nil, err
	}

	if err := sym.CheckIndices(indices); err != nil {
		u.addError(name, sym.Line, sym.Column, err)
		return sym, err
	}
	sym.SetCurrentIndices(indices)
	return sym, nil
}

// Emit appends a quadruple to the code of the unit and returns its address. Symbol operands should refer to
// declared symbols, except the procedure of a call.
func (u *Unit) Emit(op quad.Operator, arg1, arg2, result quad.Operand) (quad.Address, error) {
	q, err := u.newQuadruple(op, arg1, arg2, result)
	if err != nil {
		return quad.NO_ADDRESS, err
	}
	return u.code.Append(q)
}

// Backpatch inserts a quadruple at a position of the code, see quad.Table.InsertAt.
func (u *Unit) Backpatch(position int, op quad.Operator, arg1, arg2, result quad.Operand) error {
	q, err := u.newQuadruple(op, arg1, arg2, result)
	if err != nil {
		return err
	}
	return u.code.InsertAt(position, q)
}

// PatchTarget sets the target of the jump at position.
func (u *Unit) PatchTarget(position int, target quad.Address) error {
	q, ok := u.code.Get(position)
	if !ok {
		return fmt.Errorf("%w: %d", quad.ErrPositionOutOfRange, position)
	}
	return q.SetTarget(target)
}

func (u *Unit) Remove(position int) (quad.Quadruple, bool) {
	return u.code.RemoveAt(position)
}

func (u *Unit) newQuadruple(op quad.Operator, arg1, arg2, result quad.Operand) (quad.Quadruple, error) {
	q, err := quad.New(op, arg1, arg2, result)
	if err != nil {
		return quad.Quadruple{}, err
	}

	operands := [3]quad.Operand{arg1, arg2, result}
	for i, operand := range operands {
		sym, ok := operand.(quad.Sym)
		if !ok || (i == 0 && op == quad.Call) {
			continue
		}
		if _, declared := u.symbols.Lookup(string(sym)); !declared {
			return quad.Quadruple{}, fmt.Errorf("%w: %s", symbols.ErrNotDeclared, sym)
		}
	}
	return q, nil
}

// Reset empties the unit so that a new compilation unit can be processed, the unit gets a new ID.
func (u *Unit) Reset() {
	u.symbols.Clear()
	u.code.Clear()
	u.pending, u.array = nil, nil
	u.diagnostics = nil
	u.setID(ulid.Make())
	u.logger.Debug().Msg("reset")
}

func (u *Unit) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), u.diagnostics...)
}

func (u *Unit) HasErrors() bool {
	for _, d := range u.diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err combines the errors of the error diagnostics, nil is returned if there are none.
func (u *Unit) Err() error {
	var errs []error
	for _, d := range u.diagnostics {
		if d.Severity == Error {
			errs = append(errs, d.Err)
		}
	}
	return utils.CombineErrors(errs...)
}

func (u *Unit) addError(symbol string, line, column int, err error) {
	u.diagnostics = append(u.diagnostics, Diagnostic{
		Severity: Error,
		Symbol:   symbol,
		Line:     line,
		Column:   column,
		Message:  err.Error(),
		Err:      err,
	})
	u.logger.Debug().Err(err).Msg("semantic error")
}

// Persist writes the listing of the code to w.
func (u *Unit) Persist(w io.Writer) error {
	return u.code.Persist(w)
}

// PersistFile writes the listing of the code to a file, failures are logged and returned.
func (u *Unit) PersistFile(fls billy.Filesystem, path string) error {
	err := u.code.PersistFile(fls, path)
	if err != nil {
		u.logger.Error().Err(err).Str("path", path).Msg("failed to persist listing")
		return err
	}
	u.logger.Info().Str("path", path).Int("quadruples", u.code.Size()).Msg("listing persisted")
	return nil
}
