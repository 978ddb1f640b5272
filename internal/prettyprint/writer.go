package prettyprint

import (
	"bufio"
	"fmt"

	"github.com/inoxlang/quadc/internal/utils"
	"github.com/muesli/termenv"
)

var (
	ANSI_RESET_SEQUENCE = []byte(termenv.CSI + termenv.ResetSeq + "m")

	COLON_SPACE = []byte{':', ' '}
	COMMA_SPACE = []byte{',', ' '}
)

// PrettyPrintWriter writes to a buffered writer and panics on error, the panics are recovered by the Print*
// functions.
type PrettyPrintWriter struct {
	writer   *bufio.Writer
	colorize bool
}

func NewWriter(writer *bufio.Writer, colorize bool) PrettyPrintWriter {
	return PrettyPrintWriter{
		writer:   writer,
		colorize: colorize,
	}
}

func (w PrettyPrintWriter) WriteString(str string) {
	utils.Must(w.writer.Write(utils.StringAsBytes(str)))
}

func (w PrettyPrintWriter) WriteStringF(fmtStr string, args ...any) {
	utils.Must(fmt.Fprintf(w.writer, fmtStr, args...))
}

func (w PrettyPrintWriter) WriteBytes(b []byte) {
	utils.Must(w.writer.Write(b))
}

func (w PrettyPrintWriter) WriteManyBytes(b ...[]byte) {
	utils.MustWriteMany(w.writer, b...)
}

// WriteColored writes str preceded by the color sequence and followed by a reset sequence,
// the sequences are omitted if the writer does not colorize.
func (w PrettyPrintWriter) WriteColored(color []byte, str string) {
	if !w.colorize || len(color) == 0 {
		w.WriteString(str)
		return
	}
	w.WriteBytes(color)
	w.WriteString(str)
	w.WriteAnsiReset()
}

func (w PrettyPrintWriter) WriteAnsiReset() {
	utils.Must(w.writer.Write(ANSI_RESET_SEQUENCE))
}

func (w PrettyPrintWriter) WriteColonSpace() {
	utils.Must(w.writer.Write(COLON_SPACE))
}

func (w PrettyPrintWriter) WriteCommaSpace() {
	utils.Must(w.writer.Write(COMMA_SPACE))
}

func (w PrettyPrintWriter) WriteByte(b byte) {
	utils.PanicIfErr(w.writer.WriteByte(b))
}

func (w PrettyPrintWriter) WriteLF() {
	utils.PanicIfErr(w.writer.WriteByte('\n'))
}

func (w PrettyPrintWriter) Flush() {
	utils.PanicIfErr(w.writer.Flush())
}
