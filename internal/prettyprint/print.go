package prettyprint

import (
	"bufio"
	"io"
	"strconv"

	"github.com/inoxlang/quadc/internal/quad"
	"github.com/inoxlang/quadc/internal/symbols"
	"github.com/inoxlang/quadc/internal/unit"
	"github.com/inoxlang/quadc/internal/utils"
)

// PrintListing writes the listing of a quadruple table to w, one quadruple per line.
// Without colorization the output is identical to the persisted listing.
func PrintListing(w io.Writer, table *quad.Table, config *PrettyPrintConfig) (finalErr error) {
	writer := NewWriter(bufio.NewWriter(w), config.Colorize)

	defer func() {
		if e := recover(); e != nil {
			finalErr = utils.ConvertPanicValueToError(e)
		}
	}()

	table.ForEach(func(position int, q quad.Quadruple) error {
		PrintQuadruple(writer, q, config)
		writer.WriteLF()
		return nil
	})

	writer.Flush()
	return nil
}

func PrintQuadruple(w PrettyPrintWriter, q quad.Quadruple, config *PrettyPrintConfig) {
	colors := config.Colors

	if q.HasAddress() {
		w.WriteColored(colors.Address, strconv.Itoa(int(q.Address())))
	} else {
		w.WriteColored(colors.Unplaced, quad.NO_ADDRESS_STRING)
	}
	w.WriteColonSpace()
	w.WriteByte('(')

	if q.Op.IsJump() {
		w.WriteColored(colors.JumpMnemonic, q.Op.String())
	} else {
		w.WriteColored(colors.Mnemonic, q.Op.String())
	}

	for _, operand := range [3]quad.Operand{q.Arg1, q.Arg2, q.Result} {
		w.WriteCommaSpace()
		printOperand(w, operand, colors)
	}
	w.WriteByte(')')
}

func printOperand(w PrettyPrintWriter, operand quad.Operand, colors *PrettyPrintColors) {
	if operand == nil {
		w.WriteColored(colors.DiscreteColor, quad.EMPTY_OPERAND)
		return
	}

	var color []byte
	switch quad.KindOf(operand) {
	case quad.SymOperand:
		color = colors.Symbol
	case quad.TempOperand:
		color = colors.Temporary
	case quad.TargetOperand:
		color = colors.Target
	default:
		color = colors.Constant
	}
	w.WriteColored(color, operand.String())
}

// PrintSymbols writes one line per symbol of the table, in name order: "<name>: <type><extents> <size> bytes".
func PrintSymbols(w io.Writer, table *symbols.Table, config *PrettyPrintConfig) (finalErr error) {
	writer := NewWriter(bufio.NewWriter(w), config.Colorize)
	colors := config.Colors

	defer func() {
		if e := recover(); e != nil {
			finalErr = utils.ConvertPanicValueToError(e)
		}
	}()

	table.ForEach(func(s *symbols.Symbol) bool {
		writer.WriteColored(colors.Symbol, s.Name)
		writer.WriteColonSpace()
		writer.WriteColored(colors.Type, s.Type.String())
		if descriptor, ok := s.ArrayDescriptor(); ok {
			writer.WriteString(descriptor.String())
		}
		writer.WriteByte(' ')
		writer.WriteColored(colors.DiscreteColor, strconv.Itoa(s.StorageSize())+" bytes")
		writer.WriteLF()
		return true
	})

	writer.Flush()
	return nil
}

// PrintDiagnostics writes one line per diagnostic, warnings and errors have a distinct color.
func PrintDiagnostics(w io.Writer, diagnostics []unit.Diagnostic, config *PrettyPrintConfig) (finalErr error) {
	writer := NewWriter(bufio.NewWriter(w), config.Colorize)
	colors := config.Colors

	defer func() {
		if e := recover(); e != nil {
			finalErr = utils.ConvertPanicValueToError(e)
		}
	}()

	for _, diagnostic := range diagnostics {
		color := colors.ErrorColor
		if diagnostic.Severity == unit.Warning {
			color = colors.WarnColor
		}
		writer.WriteColored(color, string(diagnostic.Severity))
		writer.WriteColonSpace()
		writer.WriteString(diagnostic.Message)
		writer.WriteLF()
	}

	writer.Flush()
	return nil
}

// PrintSuccess writes a single line in the success color.
func PrintSuccess(w io.Writer, msg string, config *PrettyPrintConfig) error {
	writer := bufio.NewWriter(w)
	NewWriter(writer, config.Colorize).WriteColored(config.Colors.SuccessColor, msg)
	if err := writer.WriteByte('\n'); err != nil {
		return err
	}
	return writer.Flush()
}
